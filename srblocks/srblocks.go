/*
The file contains the step and repeat parameters of %SR commands
*/
package srblocks

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

/*
############################## step and repeat blocks #################################
*/
type SRBlock struct {
	srString string
	numX     int
	numY     int
	dX       float64
	dY       float64
	nItems   int // number of items in the block
}

func (srblock *SRBlock) String() string {
	if srblock == nil {
		return "<nil>"
	}
	return "Step and repeat block:\n" +
		"\tsource string: " + srblock.srString + "\n" +
		"\tcontains " + strconv.Itoa(srblock.numX) + " repeats along X axis and " + strconv.Itoa(srblock.numY) + " repeats along Y axis\n" +
		"\tnumber of items in each repetition: " + strconv.Itoa(srblock.nItems) + "\n" +
		"\tdX=" + strconv.FormatFloat(srblock.dX, 'f', 5, 64) +
		", dY=" + strconv.FormatFloat(srblock.dY, 'f', 5, 64) + "\n"
}

func (srblock *SRBlock) NumX() int {
	return srblock.numX
}

func (srblock *SRBlock) NumY() int {
	return srblock.numY
}

// DX and DY are in the document units
func (srblock *SRBlock) DX() float64 {
	return srblock.dX
}

func (srblock *SRBlock) DY() float64 {
	return srblock.dY
}

func (srblock *SRBlock) NItems() int {
	return srblock.nItems
}

func (srblock *SRBlock) IncNItems() {
	srblock.nItems++
}

// IsClosing reports whether the parameters are the empty "%SR*%" or the
// neutral X1Y1 form, both close the open block
func (srblock *SRBlock) IsClosing() bool {
	return srblock.numX == 1 && srblock.numY == 1 && srblock.dX == 0 && srblock.dY == 0
}

// Init parses the body of %SR command: "X2Y3I5.0J2.5", empty body means block end
func (srblock *SRBlock) Init(ins string) error {
	ins = strings.TrimSpace(ins)
	ins = strings.TrimPrefix(ins, "%SR")
	ins = strings.TrimSuffix(strings.TrimSuffix(ins, "%"), "*")
	srblock.srString = ins
	srblock.nItems = 0
	if len(ins) == 0 {
		srblock.numX, srblock.numY = 1, 1
		srblock.dX, srblock.dY = 0, 0
		return nil
	}
	res, err := ExtractLetterDelimitedFloats(ins, "XYIJ")
	if err != nil {
		return fmt.Errorf("SRBlock.Init: %w", err)
	}
	if len(res) != 4 {
		return errors.New("SRBlock.Init: missing one or some SRBlock parameter(s) in " + ins)
	}
	srblock.numX = int(res['X'])
	if srblock.numX < 1 {
		return errors.New("SRBlock.Init: X count < 1")
	}
	srblock.numY = int(res['Y'])
	if srblock.numY < 1 {
		return errors.New("SRBlock.Init: Y count < 1")
	}
	srblock.dX = res['I']
	srblock.dY = res['J']
	if srblock.dX < 0 || srblock.dY < 0 {
		return errors.New("SRBlock.Init: negative step distance")
	}
	return nil
}

// the function splits the input string by substrings using template's symbols as delimiters
// and returns a map symbol:value. The letters may come in any order.
func ExtractLetterDelimitedFloats(ins, template string) (map[byte]float64, error) {
	type mark struct {
		letter byte
		pos    int
	}
	marks := make([]mark, 0, len(template))
	for i := range template {
		p := strings.IndexByte(ins, template[i])
		if p == -1 {
			continue
		}
		if strings.IndexByte(ins[p+1:], template[i]) != -1 {
			return nil, fmt.Errorf("letter %c is repeated in %s", template[i], ins)
		}
		marks = append(marks, mark{template[i], p})
	}
	sort.Slice(marks, func(a, b int) bool { return marks[a].pos < marks[b].pos })
	if len(marks) > 0 && marks[0].pos != 0 {
		return nil, fmt.Errorf("unexpected %q before the first letter", ins[:marks[0].pos])
	}

	out := make(map[byte]float64, len(marks))
	for i := range marks {
		end := len(ins)
		if i < len(marks)-1 {
			end = marks[i+1].pos
		}
		fv, err := strconv.ParseFloat(ins[marks[i].pos+1:end], 64)
		if err != nil {
			return nil, err
		}
		out[marks[i].letter] = fv
	}
	return out, nil
}
