package domain

import "context"

// CartItem 是购物车里的一个条目
type CartItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// Cart 是用户的购物车，每个用户一个
type Cart struct {
	UserID string
	Items  []CartItem
}

// IsEmpty 判断购物车是否为空
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot 把购物车条目复制为订单条目
func (c *Cart) Snapshot() []OrderItem {
	items := make([]OrderItem, len(c.Items))
	for i, it := range c.Items {
		items[i] = OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		}
	}
	return items
}

// CartRepository 是购物车的出站端口
type CartRepository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	SetItem(ctx context.Context, userID string, item CartItem) error
	RemoveItem(ctx context.Context, userID, productID string) error
	// Clear 清空条目但保留购物车本身
	Clear(ctx context.Context, userID string) error
}
