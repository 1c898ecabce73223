package fluentsql

import (
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"sync"
)

// Scanner, sonuç satırlarını Go değerlerine aktarır.
//
// Kolonlar struct alanlarıyla `db:"kolon"` etiketi üzerinden eşleşir; etiket yoksa alan adının
// küçük harfli hali kullanılır. Motor kolon adlarını büyük harfle döndürdüğünden eşleşme
// büyük/küçük harfe duyarsızdır.
type Scanner interface {
	// ScanRows, tüm satırları dest'in gösterdiği struct slice'ına ekler.
	ScanRows(rows *sql.Rows, dest any) error

	// ScanFirst, ilk satırı dest struct'ına yazar; satır yoksa ErrNoRows döner.
	ScanFirst(rows *sql.Rows, dest any) error

	// ScanValue, tek kolonlu tek satırı dest'e yazar.
	ScanValue(row *sql.Row, dest any) error

	// ScanColumn, tek kolonlu satırları dest'in gösterdiği slice'a ekler.
	ScanColumn(rows *sql.Rows, dest any) error
}

// DefaultScanner, reflection tabanlı varsayılan tarayıcıdır. Struct eşlemeleri tip başına
// bir kez hesaplanıp önbellekte tutulur.
type DefaultScanner struct {
	cache sync.Map // reflect.Type -> *structInfo
}

var _ Scanner = (*DefaultScanner)(nil)

// NewDefaultScanner, varsayılan tarayıcıyı oluşturur.
func NewDefaultScanner() *DefaultScanner {
	return &DefaultScanner{}
}

type structInfo struct {
	fields  []fieldInfo
	columns map[string]int
}

type fieldInfo struct {
	index []int
	name  string
}

// ScanRows, satırları struct veya *struct slice'ına ekler.
func (s *DefaultScanner) ScanRows(rows *sql.Rows, dest any) error {
	if rows == nil {
		return ErrNoRows
	}
	defer rows.Close()

	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrNotAPointer
	}

	sliceVal := v.Elem()
	if sliceVal.Kind() != reflect.Slice {
		return ErrNotASlice
	}

	elemType := sliceVal.Type().Elem()
	isPtr := elemType.Kind() == reflect.Pointer
	if isPtr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return ErrNotAStruct
	}

	mapping, err := s.mapColumns(rows, elemType)
	if err != nil {
		return err
	}

	for rows.Next() {
		elemVal := reflect.New(elemType).Elem()
		if err := rows.Scan(targets(elemVal, mapping)...); err != nil {
			return WrapError("scan row", err)
		}

		if isPtr {
			sliceVal.Set(reflect.Append(sliceVal, elemVal.Addr()))
		} else {
			sliceVal.Set(reflect.Append(sliceVal, elemVal))
		}
	}

	if err := rows.Err(); err != nil {
		return WrapError("rows iteration", err)
	}
	return nil
}

// ScanFirst, ilk satırı struct'a yazar ve kalan satırları okumadan kapatır.
func (s *DefaultScanner) ScanFirst(rows *sql.Rows, dest any) error {
	if rows == nil {
		return ErrNoRows
	}
	defer rows.Close()

	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrNotAPointer
	}
	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return ErrNotAStruct
	}

	mapping, err := s.mapColumns(rows, elem.Type())
	if err != nil {
		return err
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return WrapError("rows iteration", err)
		}
		return ErrNoRows
	}

	if err := rows.Scan(targets(elem, mapping)...); err != nil {
		return WrapError("scan row", err)
	}
	return nil
}

// ScanValue, tek değer okur. Sayım ve toplama sorguları için kullanılır.
func (s *DefaultScanner) ScanValue(row *sql.Row, dest any) error {
	if row == nil {
		return ErrNoRows
	}
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrNotAPointer
	}

	if err := row.Scan(dest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoRows
		}
		return WrapError("scan value", err)
	}
	return nil
}

// ScanColumn, tek kolonlu sonuçları slice'a ekler.
//
//	var ids []int64
//	scanner.ScanColumn(rows, &ids)
func (s *DefaultScanner) ScanColumn(rows *sql.Rows, dest any) error {
	if rows == nil {
		return ErrNoRows
	}
	defer rows.Close()

	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrNotAPointer
	}

	sliceVal := v.Elem()
	if sliceVal.Kind() != reflect.Slice {
		return ErrNotASlice
	}

	elemType := sliceVal.Type().Elem()
	for rows.Next() {
		elemPtr := reflect.New(elemType)
		if err := rows.Scan(elemPtr.Interface()); err != nil {
			return WrapError("scan column", err)
		}
		sliceVal.Set(reflect.Append(sliceVal, elemPtr.Elem()))
	}

	if err := rows.Err(); err != nil {
		return WrapError("rows iteration", err)
	}
	return nil
}

// mapColumns returns, per result column, the field index or -1 when no field matches.
func (s *DefaultScanner) mapColumns(rows *sql.Rows, t reflect.Type) ([][]int, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, WrapError("get columns", err)
	}

	info := s.getStructInfo(t)
	mapping := make([][]int, len(columns))
	for i, col := range columns {
		if idx, ok := info.columns[strings.ToLower(col)]; ok {
			mapping[i] = info.fields[idx].index
		}
	}
	return mapping, nil
}

func targets(elem reflect.Value, mapping [][]int) []any {
	dests := make([]any, len(mapping))
	for i, index := range mapping {
		if index == nil {
			var ignore any
			dests[i] = &ignore
			continue
		}
		dests[i] = elem.FieldByIndex(index).Addr().Interface()
	}
	return dests
}

func (s *DefaultScanner) getStructInfo(t reflect.Type) *structInfo {
	if cached, ok := s.cache.Load(t); ok {
		return cached.(*structInfo)
	}

	info := &structInfo{columns: make(map[string]int)}
	s.parseStruct(t, nil, info)
	actual, _ := s.cache.LoadOrStore(t, info)
	return actual.(*structInfo)
}

// parseStruct gömülü struct'ları da dolaşır.
func (s *DefaultScanner) parseStruct(t reflect.Type, index []int, info *structInfo) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldIndex := append(append([]int{}, index...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			s.parseStruct(field.Type, fieldIndex, info)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "-" {
			continue
		}

		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}
		name = strings.ToLower(name)

		info.columns[name] = len(info.fields)
		info.fields = append(info.fields, fieldInfo{index: fieldIndex, name: name})
	}
}

// FieldNames, dest'in (struct, *struct veya slice) eşlenen kolon adlarını döndürür.
// Select(scanner.FieldNames(...)...) ile "select *" yerine açık kolon listesi kurulabilir.
func (s *DefaultScanner) FieldNames(dest any) ([]string, error) {
	t := reflect.TypeOf(dest)
	for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, ErrNotAStruct
	}

	info := s.getStructInfo(t)
	names := make([]string, len(info.fields))
	for i, f := range info.fields {
		names[i] = f.name
	}
	return names, nil
}
