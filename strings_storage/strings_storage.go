/*
 Supplier and acceptor of the Gerber tokens
*/

package strings_storage

type StringsStorage interface {
	Supplier
	Consumer
}

type Supplier interface {
	String() string
	Len() int
}

type Consumer interface {
	Accept(string)
}

// Storage keeps the tokens in the order of acceptance and reads them back one by one
type Storage struct {
	index   int
	strings []string
}

func NewStorage() *Storage {
	retVal := new(Storage)
	retVal.strings = make([]string, 0)
	return retVal
}

// String returns the next token, "" when the storage is exhausted
func (storage *Storage) String() string {
	if storage.index >= len(storage.strings) {
		return ""
	}
	storage.index++
	return storage.strings[storage.index-1]
}

// Peek returns the next token without consuming it
func (storage *Storage) Peek() string {
	if storage.index >= len(storage.strings) {
		return ""
	}
	return storage.strings[storage.index]
}

// empty strings are discarded
func (storage *Storage) Accept(s string) {
	if len(s) > 0 {
		storage.strings = append(storage.strings, s)
	}
}

func (storage *Storage) Len() int {
	return len(storage.strings)
}

func (storage *Storage) ResetPos() {
	storage.index = 0
}

func (storage *Storage) Empty() {
	storage.index = 0
	storage.strings = storage.strings[:0]
}

// PeekPos returns the index of the token String will return next
func (storage *Storage) PeekPos() int {
	return storage.index
}

// Find returns the first token for which match is true, the read position is not changed
func (storage *Storage) Find(match func(string) bool) (string, bool) {
	for _, s := range storage.strings {
		if match(s) {
			return s, true
		}
	}
	return "", false
}

func (storage *Storage) ToArray() []string {
	retVal := make([]string, len(storage.strings))
	copy(retVal, storage.strings)
	return retVal
}
