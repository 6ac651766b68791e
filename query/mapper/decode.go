package mapper

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Decode copies row into the struct pointed to by dest. Columns are matched
// by `db` tag, then by lower-cased field name, case-insensitively.
func Decode(row Row, dest interface{}) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr || destValue.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct, got %T", dest)
	}
	return decodeStruct(row, destValue.Elem())
}

// DecodeAll decodes rows into the slice pointed to by dest. The element type
// may be a struct or a pointer to struct.
func DecodeAll(rows []Row, dest interface{}) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr || destValue.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to slice, got %T", dest)
	}

	sliceValue := destValue.Elem()
	elemType := sliceValue.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	if isPtr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("slice element must be a struct, got %s", elemType)
	}

	out := reflect.MakeSlice(sliceValue.Type(), 0, len(rows))
	for i, row := range rows {
		elem := reflect.New(elemType)
		if err := decodeStruct(row, elem.Elem()); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if isPtr {
			out = reflect.Append(out, elem)
		} else {
			out = reflect.Append(out, elem.Elem())
		}
	}

	sliceValue.Set(out)
	return nil
}

func decodeStruct(row Row, v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		column := columnName(field)
		if column == "" {
			continue
		}

		value, ok := lookup(row, column)
		if !ok {
			continue
		}

		if err := setField(fieldValue, value); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

func columnName(field reflect.StructField) string {
	if tag := field.Tag.Get("db"); tag != "" {
		if tag == "-" {
			return ""
		}
		return strings.Split(tag, ",")[0]
	}
	return strings.ToLower(field.Name)
}

func lookup(row Row, column string) (interface{}, bool) {
	if v, ok := row[column]; ok {
		return v, true
	}
	for k, v := range row {
		if strings.EqualFold(k, column) {
			return v, true
		}
	}
	return nil, false
}

func setField(field reflect.Value, value interface{}) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.Kind() == reflect.Ptr {
		ptr := reflect.New(field.Type().Elem())
		if err := setField(ptr.Elem(), value); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	valueReflect := reflect.ValueOf(value)
	if valueReflect.Type().AssignableTo(field.Type()) {
		field.Set(valueReflect)
		return nil
	}

	// Drivers return numbers as int64/float64 or, over the text protocol, as
	// strings.
	switch field.Kind() {
	case reflect.String:
		field.SetString(fmt.Sprint(value))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(value)
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt64(value)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("cannot store %d in %s", n, field.Type())
		}
		field.SetUint(uint64(n))

	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(value)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		n, err := toInt64(value)
		if err != nil {
			b, ok := value.(bool)
			if !ok {
				return fmt.Errorf("cannot convert %T to bool", value)
			}
			field.SetBool(b)
			return nil
		}
		field.SetBool(n != 0)

	case reflect.Struct:
		if field.Type() != reflect.TypeOf(time.Time{}) {
			return fmt.Errorf("unsupported struct type: %s", field.Type())
		}
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("cannot convert %T to time.Time", value)
		}
		ts, err := parseTime(s)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(ts))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}

	return nil
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to int: %w", v, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("cannot convert %T to int", value)
}

func toFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to float: %w", v, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot convert %T to float", value)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}
