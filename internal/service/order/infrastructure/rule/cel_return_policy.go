package rule

import (
	"context"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/service/order/domain/port"
)

// CELReturnPolicy 是 domain 的 ReturnPolicy 接口的 CEL 实现。
// 退货资格规则由运营以 CEL 表达式下发，例如：
//
//	daysSinceDelivery <= 30.0 && totalAmount < 500000
//
// 表达式在构造时编译一次，之后的评估只做求值。
type CELReturnPolicy struct {
	program cel.Program
}

// NewCELReturnPolicy 编译表达式并返回策略实例，表达式必须产出布尔值
func NewCELReturnPolicy(expression string) (*CELReturnPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("orderId", cel.StringType),
		cel.Variable("totalAmount", cel.IntType),
		cel.Variable("daysSinceDelivery", cel.DoubleType),
		cel.Variable("itemCount", cel.IntType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cel environment")
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "invalid return policy expression %q", expression)
	}
	if ast.OutputType() != cel.BoolType {
		return nil, errors.Errorf("return policy expression %q must evaluate to a boolean", expression)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build cel program")
	}
	return &CELReturnPolicy{program: program}, nil
}

// Evaluate 对单笔订单事实求值
func (p *CELReturnPolicy) Evaluate(ctx context.Context, fact port.ReturnFact) (bool, error) {
	out, _, err := p.program.ContextEval(ctx, map[string]interface{}{
		"orderId":           fact.OrderID,
		"totalAmount":       fact.TotalAmount,
		"daysSinceDelivery": fact.DaysSinceDelivery,
		"itemCount":         fact.ItemCount,
	})
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeInternal, "return policy evaluation failed", err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, apperrors.New(apperrors.CodeInternal, "return policy produced a non-boolean result")
	}
	return allowed, nil
}
