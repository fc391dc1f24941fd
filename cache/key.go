package cache

import (
	"fmt"
	"reflect"
	"strings"
)

// Call identifies the intercepted operation: the type that owns it and the
// method name.
type Call struct {
	Owner  string
	Method string
}

// CallOf builds a Call whose owner is the fully-qualified type name of v.
func CallOf(v any, method string) Call {
	return Call{Owner: OwnerOf(v), Method: method}
}

// OwnerOf returns the fully-qualified name of v's type, dereferencing
// pointers, e.g. "github.com/acme/wallet.Wallet".
func OwnerOf(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// SignatureKey joins owner, method and every argument with "-". Nil arguments
// contribute an empty segment; everything else is formatted with fmt's %v.
//
// Arguments whose string forms collide yield the same key. "a-b" and "a","b"
// collide, and so do no arguments, a single nil and a single "": all three
// produce "owner-method-". Operations that must tell these apart should not
// share a Call.
func SignatureKey(call Call, args ...any) string {
	var b strings.Builder
	b.WriteString(call.Owner)
	b.WriteByte('-')
	b.WriteString(call.Method)
	b.WriteByte('-')
	for i, a := range args {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(stringify(a))
	}
	return b.String()
}

func stringify(a any) string {
	if isNil(a) {
		return ""
	}
	if s, ok := a.(string); ok {
		return s
	}
	return fmt.Sprint(a)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
