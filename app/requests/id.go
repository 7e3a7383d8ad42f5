package requests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ProductID accepts a product id sent either as a JSON string ("3") or a
// JSON number (3). Storefront scripts send both.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product_id must be a string or number")
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string { return string(id) }
