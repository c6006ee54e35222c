package strings_storage

import (
	"log"
	"os"
	"strings"
	"testing"
)

var testArray = []string{
	"string 0",
	"string 1",
	"string 2",
	"string 3",
	"string 4",
	"string 5",
	"string 6",
	"string 7",
	"string 8",
	"string 9",
	"string 10",
	"string 11",
	"string 12",
	"string 13",
	"string 14",
	"string 15",
	"string 16",
	"string 17",
	"string 18",
}

var ext_storage *Storage

func TestMain(m *testing.M) {
	ext_storage = NewStorage()
	if ext_storage.Len() != 0 {
		log.Println("ext_storage.Len() == 0 failed")
	} else {
		log.Println("ext_storage.Len() == 0 passed")
	}
	os.Exit(m.Run())
}

func TestStorage_String(t *testing.T) {

	if strings.Compare(ext_storage.String(), "") != 0 {
		t.Error("reading from the empty storage error")
	} else {
		log.Println("reading from the empty storage passed")
	}

}

func TestNewStorage(t *testing.T) {
	const arrLen int = 100000
	var storageArray [arrLen]*Storage

	for i := 0; i < arrLen; i++ {
		storageArray[i] = NewStorage()
	}

	for i := range storageArray {
		for _, inString := range testArray {
			storageArray[i].Accept(inString)
		}
		if storageArray[i].Len() != len(testArray) {
			t.Error("storageArray[i].Len() != len(testArray)")
		} else {
			//			log.Println("PASSED: storageArray[i].Len() == len(testArray)")
		}
	}

	for j := range testArray {
		for i := range storageArray {
			if strings.Compare(testArray[j], storageArray[i].String()) != 0 {
				t.Error("testArray[j] not equal storageArray[i].String()")
			}
		}
	}
	// try to read beyong storage size
	for i := range storageArray {
		if strings.Compare("", storageArray[i].String()) != 0 {
			t.Error("read beyond storage size returned non-empty string!")
		}
	}
	// reset indexes
	for i := range storageArray {
		storageArray[i].ResetPos()
		}
	t.Log("read again after resetting positions")
	for j := range testArray {
		for i := range storageArray {
			if strings.Compare(testArray[j], storageArray[i].String()) != 0 {
				t.Error("testArray[j] not equal storageArray[i].String()")
			}
		}
	}


}

func TestStorage_PeekAndFind(t *testing.T) {
	s := NewStorage()
	s.Accept("%FSLAX24Y24*%")
	s.Accept("")
	s.Accept("%MOMM*%")
	s.Accept("D10*")
	if s.Len() != 3 {
		t.Fatal("empty string must be discarded")
	}
	if s.Peek() != "%FSLAX24Y24*%" || s.PeekPos() != 0 {
		t.Error("peek must not consume")
	}
	_ = s.String()
	found, ok := s.Find(func(str string) bool { return strings.HasPrefix(str, "%FS") })
	if !ok || found != "%FSLAX24Y24*%" {
		t.Error("find failed")
	}
	if s.PeekPos() != 1 {
		t.Error("find must not move the position")
	}
	if _, ok = s.Find(func(str string) bool { return str == "M02*" }); ok {
		t.Error("M02* is not stored")
	}
	arr := s.ToArray()
	arr[0] = "changed"
	if s.Peek() != "%MOMM*%" {
		t.Error("ToArray must return a copy")
	}
	s.Empty()
	if s.Len() != 0 || s.Peek() != "" {
		t.Error("storage is not empty")
	}
}
