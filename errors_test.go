package coroexec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_ZeroMeansNoError(t *testing.T) {
	var e ErrorCode
	assert.True(t, e.IsZero())
	assert.Equal(t, Category(0), e.Category())
}

func TestErrorCode_CategoryRoundTrip(t *testing.T) {
	native := NativeError(5)
	assert.Equal(t, CategoryNative, native.Category())
	assert.Equal(t, uint32(5), native.Value())

	sys := SystemError(5)
	assert.Equal(t, CategorySystem, sys.Category())
	assert.Equal(t, uint32(5), sys.Value())

	dom := DomainError(DomainEOF)
	assert.Equal(t, CategoryDomain, dom.Category())
	assert.Equal(t, uint32(DomainEOF), dom.Value())

	assert.NotEqual(t, native.Combined(), sys.Combined())
	assert.NotEqual(t, sys.Combined(), dom.Combined())
}

func TestErrorCode_MessageIsLowercaseFirstSentence(t *testing.T) {
	e := DomainError(DomainVersion)
	assert.Equal(t, "version mismatch", e.Error())
}

func TestPanicError_UnwrapsErrorValues(t *testing.T) {
	cause := assert.AnError
	pe := &PanicError{Value: cause}
	assert.Equal(t, cause, pe.Unwrap())

	pe2 := &PanicError{Value: "boom"}
	assert.Nil(t, pe2.Unwrap())
}
