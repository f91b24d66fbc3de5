package token

import (
	"strconv"

	"github.com/google/uuid"
)

// idNamespace scopes derived ids so they never collide with random uuids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("magicmove/token"))

// DeriveID hashes the fragment's text, its structural path and its
// occurrence index among fragments sharing the same text and path.
// Identical inputs always produce identical ids.
func DeriveID(text, path string, occurrence int) ID {
	name := make([]byte, 0, len(text)+len(path)+8)
	name = append(name, text...)
	name = append(name, 0)
	name = append(name, path...)
	name = append(name, 0)
	name = strconv.AppendInt(name, int64(occurrence), 10)
	return ID(uuid.NewSHA1(idNamespace, name).String())
}
