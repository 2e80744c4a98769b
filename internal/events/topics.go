package events

const (
	TopicPlantAdded         = "plantnet.plant.added"
	TopicPlantStockAdjusted = "plantnet.plant.stock_adjusted"
	TopicOrderPlaced        = "plantnet.order.placed"
	TopicOrderStatusChanged = "plantnet.order.status_changed"
	TopicUserRoleChanged    = "plantnet.user.role_changed"
)

// Topics is every stream the API publishes.
var Topics = []string{
	TopicPlantAdded,
	TopicPlantStockAdjusted,
	TopicOrderPlaced,
	TopicOrderStatusChanged,
	TopicUserRoleChanged,
}

// PartitionKey keeps all events of one document on one partition, in order.
func PartitionKey(id string) []byte { return []byte(id) }
