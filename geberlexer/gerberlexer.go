package geberlexer

import (
	"strings"
	"unicode"

	"github.com/golang/glog"

	stor "github.com/VasiliyTurchenko/gerber2ngc/strings_storage"
)

/*
FS Format specification. Sets the coordinate format, e.g. the number of decimals.
MO Mode. Sets the unit to inch or mm.
AD Aperture define. Defines a template based aperture and assigns a D code to it.
AM Aperture macro. Defines a macro aperture template.
AB Aperture block. Defines a block aperture and assigns a D-code to it.
Dnn (nn≥10) Sets the current aperture to D code nn.
D01 Interpolate operation. Outside a region statement D01 creates a draw or arc
object using the current aperture. Inside it creates a linear or circular contour
segment.
D02 Move operation. D02 does not create a graphics object but moves the current
point to the coordinate in the D02 command.
D03 Flash operation. Creates a flash object with the current aperture.
G01 G02 G03 Set the interpolation mode to linear, clockwise or counterclockwise circular.
G74 G75 Set quadrant mode to single or multi quadrant.
LP LM LR LS Load polarity, mirror, rotation and scale object transformation parameters.
G36 G37 Start and end a region statement.
SR Step and repeat. Opens or closes a step and repeat statement.
G04 Comment.
TF TA TO TD Attributes.
M02 End of file.

Historic codes: G54 and G55 precede a D-code and have no effect,
G70 and G71 set the units, G90 and G91 set absolute or incremental notation,
M00 is the same as M02, M01 has no effect,
IP AS IR MI OF SF IN LN are image parameters, warned about and ignored.
*/

type GerberCommandId byte

const (
	AB GerberCommandId = iota
	AD
	AM
	AS
	D
	D01
	D02
	D03
	FS
	G01
	G02
	G03
	G04
	G36
	G37
	G54
	G55
	G70
	G71
	G74
	G75
	G90
	G91
	IN
	IP
	IR
	LM
	LN
	LP
	LR
	LS
	M00
	M01
	M02
	MI
	MO
	OF
	SF
	SR
	TA
	TD
	TF
	TO
	// must be last
	NOP
)

var commandNames = [...]string{
	AB: "AB", AD: "AD", AM: "AM", AS: "AS",
	D: "D", D01: "D01", D02: "D02", D03: "D03",
	FS: "FS",
	G01: "G01", G02: "G02", G03: "G03", G04: "G04",
	G36: "G36", G37: "G37", G54: "G54", G55: "G55",
	G70: "G70", G71: "G71", G74: "G74", G75: "G75",
	G90: "G90", G91: "G91",
	IN: "IN", IP: "IP", IR: "IR",
	LM: "LM", LN: "LN", LP: "LP", LR: "LR", LS: "LS",
	M00: "M00", M01: "M01", M02: "M02",
	MI: "MI", MO: "MO", OF: "OF", SF: "SF", SR: "SR",
	TA: "TA", TD: "TD", TF: "TF", TO: "TO",
	NOP: "NOP",
}

func (id GerberCommandId) String() string {
	if int(id) < len(commandNames) {
		return commandNames[id]
	}
	return "NOP"
}

// IsExtended reports whether the command is a %...% one
func (id GerberCommandId) IsExtended() bool {
	switch id {
	case AB, AD, AM, AS, FS, IN, IP, IR, LM, LN, LP, LR, LS, MI, MO, OF, SF, SR, TA, TD, TF, TO:
		return true
	}
	return false
}

// the word commands recognized by the classifier
var GCmdBaseArray = []GerberCommandId{D, D01, D02, D03, G01, G02, G03, G04, G36, G37, G54, G55,
	G70, G71, G74, G75, G90, G91, M00, M01, M02}

// the extended commands recognized by the classifier
var GCmdExtArray = []GerberCommandId{AB, AD, AM, AS, FS, IN, IP, IR, LM, LN, LP, LR, LS, MI, MO,
	OF, SF, SR, TA, TD, TF, TO}

// GerberCommand is a classified token.
// Body is the token without the command letters and delimiters:
// "%ADD10C,0.5*%" gives AD and "D10C,0.5", "X100Y200D01*" gives D01 and "X100Y200".
// For the D command the Body is the aperture number.
type GerberCommand struct {
	Cmd    GerberCommandId
	Body   string
	Source string
}

func (gc *GerberCommand) String() string {
	return "{command:\"" + gc.Cmd.String() + "\",val:\"" + gc.Body + "\"}"
}

type Delim byte

const (
	DataBlockTrailer Delim = '*'
	ExtCmdDelimiter  Delim = '%'
)

func (d Delim) String() string {
	switch d {
	case DataBlockTrailer:
		return "DBEND"
	case ExtCmdDelimiter:
		return "EXTCMD"
	default:
		return string(d)
	}
}

// Classify recognizes the command of a single token produced by TokenizeGerber
func Classify(token string) GerberCommand {
	retVal := GerberCommand{Cmd: NOP, Source: token}
	if strings.HasPrefix(token, string(ExtCmdDelimiter)) {
		body := strings.TrimPrefix(token, string(ExtCmdDelimiter))
		body = strings.TrimSuffix(body, string(ExtCmdDelimiter))
		body = strings.TrimSuffix(body, string(DataBlockTrailer))
		if len(body) < 2 {
			retVal.Body = body
			return retVal
		}
		for _, id := range GCmdExtArray {
			if body[:2] == id.String() {
				retVal.Cmd = id
				retVal.Body = body[2:]
				return retVal
			}
		}
		retVal.Body = body
		return retVal
	}

	s := strings.TrimSuffix(token, string(DataBlockTrailer))
	switch {
	case len(s) == 0:
		return retVal
	case s[0] == 'G' || s[0] == 'M':
		n := 1
		for n < len(s) && s[n] >= '0' && s[n] <= '9' {
			n++
		}
		code := FormatGCode(s[:1], s[1:n])
		for _, id := range GCmdBaseArray {
			if code == id.String() {
				retVal.Cmd = id
				retVal.Body = strings.TrimSpace(s[n:])
				return retVal
			}
		}
		retVal.Body = code
		return retVal
	}

	// coordinate data terminated by the D-code, or a bare Dnn
	dPos := strings.LastIndexByte(s, 'D')
	if dPos == -1 {
		if strings.ContainsAny(s[:1], "XYIJ") {
			// implicit D01, deprecated but still met
			retVal.Cmd = D01
			retVal.Body = s
		}
		return retVal
	}
	code := FormatGCode("D", s[dPos+1:])
	switch code {
	case "D01":
		retVal.Cmd = D01
	case "D02":
		retVal.Cmd = D02
	case "D03":
		retVal.Cmd = D03
	default:
		if dPos != 0 {
			return retVal
		}
		retVal.Cmd = D
		retVal.Body = code[1:]
		return retVal
	}
	retVal.Body = s[:dPos]
	return retVal
}

// deletes leading '0'
func FormatGCode(sym string, num string) string {
	if num == "" {
		return sym
	}
	num = strings.TrimLeft(num, "0")
	if len(num) == 1 {
		return sym + "0" + num
	}
	if len(num) == 0 {
		return sym + "00"
	}
	return sym + num
}

/* ----- gerber string tokenizer ------------------------------------ */

// TokenizeGerber splits the file content into tokens.
//  1. if we met '%', all the bytes until next '%' stay unchanged,
//     leading and trailing '%' are included in the token
//  2. white space between the tokens is skipped
//  3. each stream of bytes with trailing '*' is a separate token
func TokenizeGerber(buf []byte) []string {
	retVal := make([]string, 0)
	a := 0
	b := len(buf)
	for a < b {
		c := buf[a]
		switch {
		case c == byte(ExtCmdDelimiter):
			start := a
			a++
			for a < b && buf[a] != byte(ExtCmdDelimiter) {
				a++
			}
			if a < b {
				a++
			}
			retVal = append(retVal, FilterNewLines(string(buf[start:a])))
		case unicode.IsSpace(rune(c)) || c == byte(DataBlockTrailer):
			a++
		default:
			start := a
			a++
			for a < b && buf[a] != byte(DataBlockTrailer) {
				a++
			}
			if a < b {
				a++
			}
			retVal = append(retVal, FilterNewLines(string(buf[start:a])))
		}
	}
	return retVal
}

// filters \n \r symbols from the string
func FilterNewLines(inString string) string {
	retVal := strings.Replace(inString, "\n", "", -1)
	return strings.Replace(retVal, "\r", "", -1)
}

// SplitModePrefix separates the G-codes written in front of the coordinate data,
// "G01X100Y100D01*" gives "G01*" and "X100Y100D01*"
func SplitModePrefix(token string) []string {
	retVal := make([]string, 0, 2)
	for len(token) > 1 && token[0] == 'G' {
		n := 1
		for n < len(token) && token[n] >= '0' && token[n] <= '9' {
			n++
		}
		code := FormatGCode("G", token[1:n])
		if code == "G04" || n == len(token) || token[n] == byte(DataBlockTrailer) {
			break
		}
		retVal = append(retVal, code+string(DataBlockTrailer))
		token = token[n:]
	}
	return append(retVal, token)
}

// Squeeze removes comments, attributes and obsolete commands.
// The empty string means the token is dropped.
func Squeeze(inString string) string {
	cmd := Classify(inString)
	switch cmd.Cmd {
	case G04:
		glog.V(2).Infoln("comment:", inString)
		return ""
	case AS, IR, MI, OF, SF, IN, LN, IP:
		glog.Warningln("obsolete command is ignored:", inString)
		return ""
	case TF, TA, TO, TD:
		glog.V(2).Infoln("attribute:", inString)
		return ""
	case G54, G55, G90, M01:
		// no effect
		if len(cmd.Body) > 0 {
			return cmd.Body + string(DataBlockTrailer)
		}
		return ""
	case G91:
		glog.Warningln("incremental notation is not supported:", inString)
		return inString
	}
	if strings.Compare(inString, string(DataBlockTrailer)) == 0 {
		return ""
	}
	return inString
}

// Lex tokenizes the file content and fills the storage with the squeezed tokens
func Lex(buf []byte) *stor.Storage {
	retVal := stor.NewStorage()
	for _, token := range TokenizeGerber(buf) {
		if !strings.HasPrefix(token, string(ExtCmdDelimiter)) {
			token = strings.ToUpper(token)
		}
		for _, s := range SplitModePrefix(token) {
			retVal.Accept(Squeeze(s))
		}
	}
	return retVal
}
