package schema

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// HeaderMappings maps normalized header names to canonical field names.
// This covers the legacy column vocabularies seen across source systems,
// Japanese and English.
var HeaderMappings = map[string]string{
	// Customer ID
	"customerid":     FieldCustomerID,
	"custid":         FieldCustomerID,
	"customernumber": FieldCustomerID,
	"memberid":       FieldCustomerID,
	"clientid":       FieldCustomerID,
	"id":             FieldCustomerID,
	"顧客id":           FieldCustomerID,
	"顧客番号":           FieldCustomerID,
	"会員id":           FieldCustomerID,
	"会員番号":           FieldCustomerID,

	// Name
	"name":         FieldName,
	"fullname":     FieldName,
	"customername": FieldName,
	"clientname":   FieldName,
	"氏名":           FieldName,
	"名前":           FieldName,
	"顧客名":          FieldName,
	"お名前":          FieldName,

	// Email
	"email":        FieldEmail,
	"emailaddress": FieldEmail,
	"mail":         FieldEmail,
	"mailaddress":  FieldEmail,
	"メールアドレス":      FieldEmail,
	"メール":          FieldEmail,
	"eメール":         FieldEmail,

	// Phone
	"phone":       FieldPhone,
	"phonenumber": FieldPhone,
	"phoneno":     FieldPhone,
	"tel":         FieldPhone,
	"telno":       FieldPhone,
	"telephone":   FieldPhone,
	"mobile":      FieldPhone,
	"電話番号":        FieldPhone,
	"電話":          FieldPhone,
	"携帯電話":        FieldPhone,
	"携帯番号":        FieldPhone,

	// Address
	"address":       FieldAddress,
	"addr":          FieldAddress,
	"streetaddress": FieldAddress,
	"住所":            FieldAddress,
	"所在地":           FieldAddress,

	// Join date
	"joindate":         FieldJoinDate,
	"joined":           FieldJoinDate,
	"registrationdate": FieldJoinDate,
	"registereddate":   FieldJoinDate,
	"registered":       FieldJoinDate,
	"signupdate":       FieldJoinDate,
	"entrydate":        FieldJoinDate,
	"登録日":              FieldJoinDate,
	"登録日時":             FieldJoinDate,
	"入会日":              FieldJoinDate,
	"加入日":              FieldJoinDate,

	// Points
	"points":       FieldPoints,
	"point":        FieldPoints,
	"pts":          FieldPoints,
	"pointbalance": FieldPoints,
	"ポイント":         FieldPoints,
	"保有ポイント":       FieldPoints,
	"ポイント残高":       FieldPoints,
}

// substringMappings maps substrings to canonical field names for fuzzy
// inference. Order matters: more specific substrings come before
// generic ones, and email entries precede address ("mailaddress"
// contains both).
var substringMappings = []struct {
	Substring string
	Target    string
}{
	{"email", FieldEmail},
	{"mail", FieldEmail},
	{"メール", FieldEmail},
	{"customerid", FieldCustomerID},
	{"custid", FieldCustomerID},
	{"memberid", FieldCustomerID},
	{"顧客", FieldCustomerID},
	{"会員", FieldCustomerID},
	{"phone", FieldPhone},
	{"mobile", FieldPhone},
	{"tel", FieldPhone},
	{"電話", FieldPhone},
	{"携帯", FieldPhone},
	{"point", FieldPoints},
	{"ポイント", FieldPoints},
	{"address", FieldAddress},
	{"addr", FieldAddress},
	{"住所", FieldAddress},
	{"join", FieldJoinDate},
	{"regist", FieldJoinDate},
	{"signup", FieldJoinDate},
	{"登録", FieldJoinDate},
	{"入会", FieldJoinDate},
	{"加入", FieldJoinDate},
	{"name", FieldName},
	{"氏名", FieldName},
	{"名前", FieldName},
}

// InferMappings takes a source header row and returns a map of
// sourceColumn -> canonical field for sources with no declared spec:
//  1. NFKC-fold, lowercase, strip whitespace/underscores/hyphens
//  2. Exact match against HeaderMappings
//  3. Substring match
//  4. No match -> column left unmapped (dropped by Clean)
//
// Each canonical field is claimed at most once, first header wins.
func InferMappings(headers []string) map[string]string {
	result := make(map[string]string, len(headers))
	usedTargets := make(map[string]bool)

	for _, header := range headers {
		normalized := normalizeHeader(header)

		if target, ok := HeaderMappings[normalized]; ok {
			if !usedTargets[target] {
				result[header] = target
				usedTargets[target] = true
				continue
			}
		}

		for _, sm := range substringMappings {
			if strings.Contains(normalized, sm.Substring) {
				if !usedTargets[sm.Target] {
					result[header] = sm.Target
					usedTargets[sm.Target] = true
					break
				}
			}
		}
	}

	return result
}

// normalizeHeader NFKC-folds and lowercases a header and strips
// whitespace, underscores, and hyphens. Full-width header text folds to
// its half-width form before matching.
func normalizeHeader(header string) string {
	s := norm.NFKC.String(strings.TrimSpace(header))
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
