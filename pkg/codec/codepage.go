package codec

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// codePages maps the code-page names accepted by CodePage onto their
// character maps. These are the DOS and Windows pages commonly seen in
// dBASE III files in the wild.
var codePages = map[string]encoding.Encoding{
	"cp437":  charmap.CodePage437,
	"cp850":  charmap.CodePage850,
	"cp852":  charmap.CodePage852,
	"cp866":  charmap.CodePage866,
	"cp1250": charmap.Windows1250,
	"cp1251": charmap.Windows1251,
	"cp1252": charmap.Windows1252,
	"latin1": charmap.ISO8859_1,
}

// CodePage resolves a code-page name to its encoding. The empty name
// selects no translation (raw bytes).
func CodePage(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, nil
	}
	cp, ok := codePages[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown code page %q", name)
	}
	return cp, nil
}
