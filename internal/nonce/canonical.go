package nonce

import (
	"strconv"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// Canonical devuelve los bytes exactos que firma el holder:
//
//	{"nonce":{"id":"…","issued_at":123},"message":"…"}
//
// Sin espacios ni newline final. Los strings se escapan como serde_json, que es lo que
// firman los holders: solo comillas, backslash y caracteres de control. encoding/json
// además escapa <, >, & y U+2028/U+2029, así que no sirve acá.
func (p NoncePayload) Canonical() []byte {
	buf := make([]byte, 0, 64+len(p.Nonce.ID)+len(p.Message))
	buf = append(buf, `{"nonce":{"id":`...)
	buf = appendString(buf, p.Nonce.ID)
	buf = append(buf, `,"issued_at":`...)
	buf = strconv.AppendInt(buf, p.Nonce.IssuedAt, 10)
	buf = append(buf, `},"message":`...)
	buf = appendString(buf, p.Message)
	buf = append(buf, '}')
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	start := 0
	for i := 0; i < len(s); {
		b := s[i]
		if b >= utf8.RuneSelf || (b >= 0x20 && b != '"' && b != '\\') {
			i++
			continue
		}
		buf = append(buf, s[start:i]...)
		switch b {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			buf = append(buf, '\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0xF])
		}
		i++
		start = i
	}
	buf = append(buf, s[start:]...)
	return append(buf, '"')
}
