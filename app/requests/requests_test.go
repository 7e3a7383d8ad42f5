package requests_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/duka/app/requests"
	"github.com/shashiranjanraj/duka/pkg/validate"
)

func TestProductIDAcceptsStringOrNumber(t *testing.T) {
	for body, want := range map[string]string{
		`{"product_id":"12"}`:  "12",
		`{"product_id":" 7 "}`: "7",
		`{"product_id":12}`:    "12",
		`{"product_id":null}`:  "",
	} {
		var in requests.AddToCart
		require.NoError(t, json.Unmarshal([]byte(body), &in), body)
		assert.Equal(t, want, in.ProductID.String(), body)
	}

	var in requests.AddToCart
	assert.Error(t, json.Unmarshal([]byte(`{"product_id":[1]}`), &in))
}

func TestUpdateQuantityDefault(t *testing.T) {
	in := requests.NewUpdateQuantity()
	require.NoError(t, json.Unmarshal([]byte(`{"product_id":"3"}`), &in))
	assert.Equal(t, 1, in.Quantity)

	require.NoError(t, json.Unmarshal([]byte(`{"product_id":"3","quantity":0}`), &in))
	assert.Equal(t, 0, in.Quantity)
}

func TestCheckoutValidation(t *testing.T) {
	errs := validate.Struct(requests.Checkout{CustomerName: " ", Email: "bad"})
	assert.Contains(t, errs, "customer_name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "address")
	assert.NotContains(t, errs, "phone")
}

func TestProductFormInput(t *testing.T) {
	f := requests.ProductForm{
		Name:          "Scarf",
		Category:      "Accessories",
		Price:         " 850.50 ",
		InStock:       "true",
		Sizes:         []string{"S"},
		RemovedImages: "a.jpg, ,b.jpg",
	}
	assert.Empty(t, validate.Struct(f))

	in := f.Input()
	assert.Equal(t, "850.5", in.Price.String())
	assert.True(t, in.InStock)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, in.RemovedImages)

	f.Price = "free"
	assert.Contains(t, validate.Struct(f), "price")
}
