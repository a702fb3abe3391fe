package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbol(t *testing.T) {
	assert.Equal(t, "£", Symbol("GBP"))
	assert.Equal(t, "$", Symbol("USD"))
	assert.Equal(t, "€", Symbol("eur"))
	assert.Equal(t, "£", Symbol(" gbp "))
	assert.Equal(t, "£", Symbol(""))
	assert.Equal(t, "ZZZ", Symbol("zzz"))
}
