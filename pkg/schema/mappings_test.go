package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferMappingsJapaneseHeaders(t *testing.T) {
	headers := []string{"顧客ID", "氏名", "メールアドレス", "電話番号", "住所", "登録日", "ポイント"}

	got := InferMappings(headers)

	want := map[string]string{
		"顧客ID":    FieldCustomerID,
		"氏名":      FieldName,
		"メールアドレス": FieldEmail,
		"電話番号":    FieldPhone,
		"住所":      FieldAddress,
		"登録日":     FieldJoinDate,
		"ポイント":    FieldPoints,
	}
	assert.Equal(t, want, got)
}

func TestInferMappingsEnglishVariants(t *testing.T) {
	headers := []string{"Customer ID", "Full Name", "E-Mail", "Tel", "Street Address", "Join Date", "Pts"}

	got := InferMappings(headers)

	want := map[string]string{
		"Customer ID":    FieldCustomerID,
		"Full Name":      FieldName,
		"E-Mail":         FieldEmail,
		"Tel":            FieldPhone,
		"Street Address": FieldAddress,
		"Join Date":      FieldJoinDate,
		"Pts":            FieldPoints,
	}
	assert.Equal(t, want, got)
}

func TestInferMappingsUnknownColumnsDropped(t *testing.T) {
	got := InferMappings([]string{"favorite_color", "shoe_size"})
	assert.Empty(t, got)
}

func TestInferMappingsFirstHeaderClaimsField(t *testing.T) {
	got := InferMappings([]string{"email", "backup_email"})
	assert.Equal(t, map[string]string{"email": FieldEmail}, got)
}

func TestInferMappingsMailAddressIsEmailNotAddress(t *testing.T) {
	got := InferMappings([]string{"mail_address", "住所"})
	assert.Equal(t, map[string]string{
		"mail_address": FieldEmail,
		"住所":           FieldAddress,
	}, got)
}

func TestNormalizeHeaderFoldsFullWidth(t *testing.T) {
	assert.Equal(t, "customerid", normalizeHeader("Ｃｕｓｔｏｍｅｒ＿ＩＤ"))
}
