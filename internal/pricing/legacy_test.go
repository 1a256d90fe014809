package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyCatalog() []Device {
	second := disposable()
	second.ID = "dev-mk"
	second.Name = "MK Lighter"
	second.Capacity = 80
	return []Device{disposable(), second}
}

func TestNormalizeLegacyOrder_SingleDeviceFormat(t *testing.T) {
	raw := []byte(`{
		"clientName": "Acme",
		"selectedDevice": 1,
		"quantity": 500,
		"supplyingDevices": true,
		"packaging": "sticker-mania",
		"shippingType": "shopify",
		"shopifyQuote": 12.5
	}`)

	o, err := NormalizeLegacyOrder(raw, legacyCatalog())
	require.NoError(t, err)
	require.Len(t, o.LineItems, 1)

	li := o.LineItems[0]
	assert.Equal(t, "dev-mk", li.DeviceID)
	assert.Equal(t, 500, li.Quantity)
	assert.Equal(t, PrintAndDevices, li.ServiceType)
	assert.Equal(t, PackagingPartner, li.Packaging)
	assert.Equal(t, SingleSided, li.Sides)
	assert.Equal(t, GlossNone, li.GlossFinish)

	assert.Equal(t, ShippingCarrier, o.ShippingType)
	assertDec(t, "12.5", o.ShippingBaseQuote)
	assertDec(t, "20", o.ShippingMarkupPct)
	assert.Equal(t, 1, o.NumDesigns)
	assert.True(t, o.SampleRun)
	assert.Equal(t, 3, o.PrinterCount)
	assert.Equal(t, TurnaroundNormal, o.Turnaround)

	_, err = newEngine(t).PriceOrder(o)
	require.NoError(t, err)
}

func TestNormalizeLegacyOrder_LineItemsWithoutServiceType(t *testing.T) {
	raw := []byte(`{
		"lineItems": [
			{"deviceIndex": 0, "quantity": 200, "supplyingDevices": false, "packaging": "client"},
			{"deviceIndex": 1, "serviceType": "devices-only", "sides": "double", "glossFinish": "both-sides"}
		],
		"sampleRun": false,
		"shippingType": "pickup",
		"shippingMarkup": 0,
		"numPrinters": 5
	}`)

	o, err := NormalizeLegacyOrder(raw, legacyCatalog())
	require.NoError(t, err)
	require.Len(t, o.LineItems, 2)

	assert.Equal(t, PrintOnly, o.LineItems[0].ServiceType)
	assert.Equal(t, PackagingClient, o.LineItems[0].Packaging)

	devOnly := o.LineItems[1]
	assert.Equal(t, DevicesOnly, devOnly.ServiceType)
	assert.Equal(t, 1000, devOnly.Quantity)
	assert.Equal(t, SingleSided, devOnly.Sides)
	assert.Equal(t, GlossNone, devOnly.GlossFinish)

	assert.False(t, o.SampleRun)
	assert.Equal(t, ShippingPickup, o.ShippingType)
	assertDec(t, "0", o.ShippingMarkupPct)
	assert.Equal(t, 5, o.PrinterCount)
}

func TestNormalizeLegacyOrder_ZeroCountsTakeDefaults(t *testing.T) {
	raw := []byte(`{
		"selectedDevice": 0,
		"quantity": 0,
		"numDesigns": 0,
		"numPrinters": 0,
		"shippingType": "pickup"
	}`)

	o, err := NormalizeLegacyOrder(raw, legacyCatalog())
	require.NoError(t, err)
	require.Len(t, o.LineItems, 1)
	assert.Equal(t, 1000, o.LineItems[0].Quantity)
	assert.Equal(t, 1, o.NumDesigns)
	assert.Equal(t, 3, o.PrinterCount)

	res, err := newEngine(t).PriceOrder(o)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Production.RequestedPrinters)
}

func TestNormalizeLegacyOrder_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		kind Kind
	}{
		{"not json", `{`, KindInvalidLegacyPayload},
		{"device index out of range", `{"selectedDevice": 7}`, KindUnknownDevice},
		{"unknown packaging", `{"packaging": "crate"}`, KindInvalidLegacyPayload},
		{"unknown shipping", `{"shippingType": "drone"}`, KindInvalidLegacyPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeLegacyOrder([]byte(tc.raw), legacyCatalog())
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}
}
