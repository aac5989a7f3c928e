package sax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeEntitiesBuiltins(t *testing.T) {
	testCases := []struct {
		Input    string
		Error    string
		Expected string
	}{
		{
			Input:    `no entities here`,
			Expected: `no entities here`,
		},
		{
			Input:    `&lt;div class=&quot;x&quot;&gt; &amp; &apos;y&apos;`,
			Expected: `<div class="x"> & 'y'`,
		},
		{
			// An HTML entity other than the commonly-tested &pound; —
			// exercises the same xml.HTMLEntity fallback with a distinct key.
			Input:    `1 &euro; is worth more than 1 &cent;`,
			Expected: "1 € is worth more than 1 ¢",
		},
		{
			Input:    `&#8364; in decimal, &#x20AC; in hex`,
			Expected: "€ in decimal, € in hex",
		},
		{
			Input:    `case-insensitive hex: &#X41;`,
			Expected: `case-insensitive hex: A`,
		},
		{
			Input: `&#dd;`,
			Error: `invalid numeric character reference "dd": strconv.ParseInt: parsing "dd": invalid syntax`,
		},
		{
			Input: `&#x999999999999;`,
			Error: `invalid numeric character reference "999999999999": strconv.ParseInt: parsing "999999999999": value out of range`,
		},
		{
			Input: `trailing &amp without a semicolon`,
			Error: `unterminated XML entity: missing closing ';'`,
		},
		{
			Input: `&nonexistent;`,
			Error: `no such XML entity "nonexistent"`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Input, func(t *testing.T) {
			actual, err := DecodeEntities([]byte(tc.Input), nil)
			if tc.Error != "" {
				assert.EqualError(t, err, tc.Error)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.Expected, string(actual))
			}
		})
	}
}

func TestDecodeEntitiesExtraOverridesBuiltin(t *testing.T) {
	extra := map[string]string{
		"amp":     "AND",  // shadows the built-in "amp" -> "&"
		"company": "Acme", // a name with no built-in entry at all
	}
	actual, err := DecodeEntities([]byte(`Bob &amp; Co, a.k.a. &company;`), extra)
	assert.NoError(t, err)
	assert.Equal(t, `Bob AND Co, a.k.a. Acme`, string(actual))
}

func TestDecodeEntitiesExtraFallsBackToBuiltin(t *testing.T) {
	extra := map[string]string{"company": "Acme"}
	actual, err := DecodeEntities([]byte(`&company; &lt; Widgets &amp; Sons`), extra)
	assert.NoError(t, err)
	assert.Equal(t, `Acme < Widgets & Sons`, string(actual))
}

func TestDecodeEntitiesAppendReusesBuffer(t *testing.T) {
	dst := make([]byte, 0, 64)
	dst = append(dst, "log: "...)
	before := len(dst)

	out, err := DecodeEntitiesAppend(dst, []byte(`&lt;ok&gt;`))
	assert.NoError(t, err)
	assert.Equal(t, "log: <ok>", string(out))
	// The prefix already in dst must survive untouched.
	assert.Equal(t, "log: ", string(out[:before]))

	// Calling it again against the same prefix, with a fresh slice of
	// identical length, must decode identically — confirms the
	// function is side-effect-free on its dst prefix.
	dst2 := append([]byte{}, "log: "...)
	out2, err := DecodeEntitiesAppend(dst2, []byte(`&lt;ok&gt;`))
	assert.NoError(t, err)
	assert.Equal(t, out, out2)
}

func TestDecodeEntitiesAppendLeavesDstUnchangedOnError(t *testing.T) {
	dst := []byte("prefix:")
	out, err := DecodeEntitiesAppend(dst, []byte(`&broken`))
	assert.EqualError(t, err, `unterminated XML entity: missing closing ';'`)
	assert.Equal(t, []byte("prefix:"), out)
}

func TestRegisterEntity(t *testing.T) {
	RegisterEntity("widget-co", "Widget Company, Inc.")
	actual, err := DecodeEntities([]byte(`Brought to you by &widget-co;`), nil)
	assert.NoError(t, err)
	assert.Equal(t, `Brought to you by Widget Company, Inc.`, string(actual))
}
