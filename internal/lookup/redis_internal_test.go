package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisKeyNamespaces(t *testing.T) {
	r := NewRedis(nil, "")

	assert.Equal(t, "refcodes:kind:state", r.kindKey("state"))
	assert.Equal(t, "refcodes:rev:state", r.reverseKey("state"))
	assert.Equal(t, "refcodes:all", r.allKey())

	keys := map[string]string{
		r.kindKey("codes"):      "kind codes",
		r.kindKey("x"):          "kind x",
		r.kindKey("x:codes"):    "kind x:codes",
		r.reverseKey("codes"):   "reverse codes",
		r.reverseKey("x"):       "reverse x",
		r.reverseKey("x:codes"): "reverse x:codes",
		r.kindKey("all"):        "kind all",
		r.reverseKey("all"):     "reverse all",
		r.allKey():              "all codes",
	}
	assert.Len(t, keys, 9, "every key is distinct")
}

func TestReverseMemberOrdersByValueThenCode(t *testing.T) {
	assert.Less(t, reverseMember("gas", "Z"), reverseMember("gas volume", "A"))
	assert.Less(t, reverseMember("oil", "BCF"), reverseMember("oil", "MCF"))
}
