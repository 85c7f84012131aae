package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStoreProfile(t *testing.T) {
	profile := DefaultStoreProfile()
	assert.Equal(t, "Kasira Store", profile.StoreName)
	assert.Equal(t, "IDR", profile.Currency)
	assert.Equal(t, "TRX", profile.TransactionPrefix)
	assert.Equal(t, "RCP", profile.ReceiptPrefix)
}

func TestNewStaticStoreProfileHolder(t *testing.T) {
	profile := DefaultStoreProfile()
	profile.StoreName = "Warung Tiga"

	holder := NewStaticStoreProfileHolder(profile)
	assert.Equal(t, "Warung Tiga", holder.Get().StoreName)
}

func TestNewStoreProfileHolder_NilLogger(t *testing.T) {
	holder, err := NewStoreProfileHolder(nil)
	assert.NoError(t, err)
	assert.Equal(t, DefaultStoreProfile().TransactionPrefix, holder.Get().TransactionPrefix)
}

func TestValidateStoreProfile(t *testing.T) {
	profile := DefaultStoreProfile()
	assert.NoError(t, validateStoreProfile(profile))

	profile.StoreName = " "
	assert.Error(t, validateStoreProfile(profile))

	profile = DefaultStoreProfile()
	profile.ReceiptPrefix = ""
	assert.Error(t, validateStoreProfile(profile))
}
