package jsmodule

import "testing"

func TestDecodeEscapes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		template bool
		want     string
		ok       bool
	}{
		{name: "plain", raw: "query A { a }", want: "query A { a }", ok: true},
		{name: "newline and tab", raw: `a\nb\tc`, want: "a\nb\tc", ok: true},
		{name: "quotes", raw: `\"x\" \'y\'`, want: `"x" 'y'`, ok: true},
		{name: "hex", raw: `\x41\x7a`, want: "Az", ok: true},
		{name: "unicode", raw: `\u00e9`, want: "é", ok: true},
		{name: "code point", raw: `\u{1F600}`, want: "😀", ok: true},
		{name: "surrogate pair", raw: `\uD83D\uDE00`, want: "😀", ok: true},
		{name: "line continuation", raw: "a\\\nb", want: "ab", ok: true},
		{name: "null", raw: `a\0b`, want: "a\x00b", ok: true},
		{name: "legacy octal", raw: `\101`, want: "A", ok: true},
		{name: "legacy octal in template", raw: `\101`, template: true, ok: false},
		{name: "template crlf", raw: "a\r\nb", template: true, want: "a\nb", ok: true},
		{name: "bad hex", raw: `\xZZ`, ok: false},
		{name: "truncated unicode", raw: `\u12`, ok: false},
		{name: "trailing backslash", raw: `abc\`, ok: false},
		{name: "identity escape", raw: `\q`, want: "q", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeEscapes(tt.raw, tt.template)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
