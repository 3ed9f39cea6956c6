package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Property(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantValid bool
		wantField string
	}{
		{name: "valid", doc: `{"title":"Villa","price":1200000,"type":"House","location":"Bali","bedrooms":3}`, wantValid: true},
		{name: "missing title", doc: `{"price":1,"type":"house","location":"Bali"}`, wantField: "title"},
		{name: "negative price", doc: `{"title":"Villa","price":-1,"type":"house","location":"Bali"}`, wantField: "price"},
		{name: "unknown type", doc: `{"title":"Villa","price":1,"type":"castle","location":"Bali"}`, wantField: "type"},
		{name: "fractional bedrooms", doc: `{"title":"Villa","price":1,"type":"house","location":"Bali","bedrooms":2.5}`, wantField: "bedrooms"},
		{name: "photo not a string", doc: `{"title":"Villa","price":1,"type":"house","location":"Bali","photos":[1]}`, wantField: "photos.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Validate(SchemaProperty, tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid, res.GetErrorMessages())
			if tt.wantField != "" {
				assert.True(t, res.HasErrors(tt.wantField), res.GetErrorMessages())
			}
		})
	}
}

func TestValidate_GoValues(t *testing.T) {
	res, err := Validate(SchemaInquiry, map[string]interface{}{"property_id": 3, "message": "Hi"})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = Validate(SchemaInquiry, []byte(`{"property_id":0,"message":""}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.GetErrorsForField("property_id"), 1)
	assert.Len(t, res.GetErrorsForField("message"), 1)
}

func TestValidate_NotifyInquiry(t *testing.T) {
	res, err := Validate(SchemaNotifyInquiry, `{"inquiryId":"not-a-uuid"}`)
	require.NoError(t, err)
	assert.False(t, res.Valid)

	res, err = Validate(SchemaNotifyInquiry, `{"inquiryId":"0b7c2a4e-5d1f-4f43-9a57-1f1f0e2c8a11"}`)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestLoad_UnknownSchema(t *testing.T) {
	_, err := Load("nope")
	assert.Error(t, err)

	a, err := Load(SchemaFavorite)
	require.NoError(t, err)
	b, err := Load(SchemaFavorite)
	require.NoError(t, err)
	assert.Same(t, a, b)
}
