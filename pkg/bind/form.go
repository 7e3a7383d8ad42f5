package bind

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// fill copies form values into the tagged fields of the struct pointed to
// by dest. Missing keys leave the field unchanged.
func fill(dest interface{}, form url.Values) map[string]string {
	errs := make(map[string]string)

	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		errs["_"] = "bind: destination must be a pointer to a struct"
		return errs
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			continue
		}
		values, present := form[name]
		if !present || len(values) == 0 {
			continue
		}
		raw := strings.TrimSpace(values[0])
		fv := rv.Field(i)

		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)
		case reflect.Int, reflect.Int64, reflect.Int32:
			if raw == "" {
				continue
			}
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				errs[name] = fmt.Sprintf("The %s must be an integer.", name)
				continue
			}
			fv.SetInt(n)
		case reflect.Bool:
			fv.SetBool(raw == "on" || raw == "true" || raw == "1")
		case reflect.Slice:
			if fv.Type().Elem().Kind() == reflect.String {
				fv.Set(reflect.ValueOf(values))
			}
		}
	}
	return errs
}
