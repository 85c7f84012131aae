package cache

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

const defaultReceiptContentTTL = 5 * time.Minute

// ReceiptContentCache keeps recently served receipt bodies out of the
// database. Content is immutable once issued, so staleness is not a concern;
// the TTL only bounds memory.
type ReceiptContentCache interface {
	Get(tenantID, receiptID snowflake.ID) (string, bool)
	Set(tenantID, receiptID snowflake.ID, content string)
}

type receiptContentCache struct {
	contents Cache[string, string]
	ttl      time.Duration
}

func NewReceiptContentCache() ReceiptContentCache {
	return &receiptContentCache{
		contents: NewTTLCache[string, string](),
		ttl:      defaultReceiptContentTTL,
	}
}

func (c *receiptContentCache) Get(tenantID, receiptID snowflake.ID) (string, bool) {
	return c.contents.Get(receiptKey(tenantID, receiptID))
}

func (c *receiptContentCache) Set(tenantID, receiptID snowflake.ID, content string) {
	if content == "" {
		return
	}
	c.contents.Set(receiptKey(tenantID, receiptID), content, c.ttl)
}

func receiptKey(tenantID, receiptID snowflake.ID) string {
	return fmt.Sprintf("%d|%d", tenantID, receiptID)
}
