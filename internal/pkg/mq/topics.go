package mq

// 各服务共享的 Topic 名称
const (
	TopicOrderPaid     = "order.paid"
	TopicPackageStatus = "package.status"
	TopicNotification  = "notification.events"
	TopicTicketMessage = "ticket.messages"
)
