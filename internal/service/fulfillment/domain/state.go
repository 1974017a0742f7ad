package domain

// PackageStatus 定义了包裹的履约状态。
// 对外序列化为小整数，顺序不可调整。
type PackageStatus int

const (
	PackagePending     PackageStatus = iota // 已创建，等待仓库处理
	PackagePreparing                        // 备货打包中
	PackageReadyToShip                      // 称重量方完成，等待面单
	PackageShipped                          // 面单已出，交给承运商
	PackageDelivered                        // 已签收
	PackageException                        // 承运异常，可恢复
	PackageReturned                         // 退货回仓
)

func (s PackageStatus) String() string {
	switch s {
	case PackagePending:
		return "PENDING"
	case PackagePreparing:
		return "PREPARING"
	case PackageReadyToShip:
		return "READY_TO_SHIP"
	case PackageShipped:
		return "SHIPPED"
	case PackageDelivered:
		return "DELIVERED"
	case PackageException:
		return "EXCEPTION"
	case PackageReturned:
		return "RETURNED"
	default:
		return "UNKNOWN"
	}
}

// allowedPackageTransitions 是包裹状态的显式流转表。
// 任意非终态都可以进入 Exception；Exception 由管理员恢复到 Preparing。
var allowedPackageTransitions = map[PackageStatus][]PackageStatus{
	PackagePending:     {PackagePreparing, PackageException},
	PackagePreparing:   {PackageReadyToShip, PackageException},
	PackageReadyToShip: {PackageShipped, PackageException},
	PackageShipped:     {PackageDelivered, PackageException},
	PackageDelivered:   {PackageReturned},
	PackageException:   {PackagePreparing},
}

// AllowedNext 返回当前状态的合法后继集合
func (s PackageStatus) AllowedNext() []PackageStatus {
	return allowedPackageTransitions[s]
}

// CanTransitionTo 判断 next 是否是当前状态的合法后继
func (s PackageStatus) CanTransitionTo(next PackageStatus) bool {
	for _, n := range allowedPackageTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}
