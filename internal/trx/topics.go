package trx

const (
	TopicProductChanged = "trx.product.changed"
	TopicInvoiceChanged = "trx.invoice.changed"
)

// Partition key = resource id, supaya event satu product/invoice tetap berurutan.
func PartitionKey(id string) []byte { return []byte(id) }
