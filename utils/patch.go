package utils

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"realestate-crm/installment"
	"realestate-crm/models"
)

// UpdatesFromPtrDTO maps the set (non-nil pointer) fields of a PATCH DTO to
// column values keyed by json tag name, so GORM's Updates touches only what
// the client sent. renames translates a json name to a column name.
// An *models.AssetRef field becomes its kind/id column pair; a field named
// "asset" maps to asset_kind/asset_id, any other name is used as prefix.
func UpdatesFromPtrDTO(dto any, renames map[string]string) map[string]any {
	out := map[string]any{}
	s, ok := structOf(dto)
	if !ok {
		return out
	}
	for i := 0; i < s.NumField(); i++ {
		fv := s.Field(i)
		if fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		col, ok := column(s.Type().Field(i), renames)
		if !ok {
			continue
		}
		if ref, isRef := fv.Elem().Interface().(models.AssetRef); isRef {
			kindCol, idCol := assetColumns(col)
			out[kindCol], out[idCol] = ref.Kind, ref.ID
			continue
		}
		out[col] = fv.Elem().Interface()
	}
	return out
}

func column(sf reflect.StructField, renames map[string]string) (string, bool) {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return "", false
	}
	if alt := renames[name]; alt != "" {
		name = alt
	}
	return name, true
}

func assetColumns(name string) (kind, id string) {
	if name == "asset" {
		return "asset_kind", "asset_id"
	}
	return name + "_asset_kind", name + "_asset_id"
}

// ParseIntDefault returns def for empty, malformed or negative input.
func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}

// ParseDate parses YYYY-MM-DD, returning the calendar day of def for an empty string.
func ParseDate(s string, def time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if def.IsZero() {
			return def, nil
		}
		return installment.DateOnly(def), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return installment.DateOnly(t), nil
}

// Page reads limit/offset query values, capping limit at 200.
func Page(limitRaw, offsetRaw string) (limit, offset int) {
	limit = ParseIntDefault(limitRaw, 50)
	if limit == 0 || limit > 200 {
		limit = 200
	}
	return limit, ParseIntDefault(offsetRaw, 0)
}
