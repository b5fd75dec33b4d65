package device

import (
	"fmt"
	"strings"
)

// PlayerProgram builds the BASIC program that steps a 4050-series machine
// through an animation's frame files. The program itself sits at tape file
// firstFile; the frames occupy the numFrames files that follow it.
//
// With automateDelay <= 0, the program halts after each frame and
// user-definable key 1 advances to the next. With a positive delay, it
// prints "AAAA" to the Option 10 printer interface at GPIB address @53
// (rig the interface to your camera shutter), sleeps the delay via the
// TransEra 741 RTC module's !PAUSE call, then clears the screen and moves
// on by itself.
func PlayerProgram(firstFile, numFrames int, automateDelay float64) []byte {
	n := firstFile
	automated := automateDelay > 0

	branch := "260"
	if automated {
		branch = "210"
	}
	rem := "REM "
	if automated {
		rem = ""
	}

	lines := []string{
		"1 GO TO 100",
		"4 GO TO 130",
		"100 INIT",
		"110 DIM S$(8190)",
		fmt.Sprintf("120 LET F=%d", n),
		"130 F=F+1",
		fmt.Sprintf("140 IF F>%d THEN 240", n+numFrames),
		"150 FIND@5:F",
		"160 PAGE",
		"170 READ@5:S$",
		fmt.Sprintf("180 IF S$=\"X\" THEN %s", branch),
		"190 CALL \"RDRAW\",S$,1,0,0",
		"200 GO TO 170",
		fmt.Sprintf("210 %sPRINT @53:\"AAAA\"", rem),
		fmt.Sprintf("220 %sCALL \"!PAUSE\",%g", rem, automateDelay),
		"230 GO TO 130",
		"240 HOME",
		"250 PRINT \"No more frames\"",
		"260 END ", "", "", // Ending with space-CR-CR seems common.
	}
	return []byte(strings.Join(lines, "\r"))
}

// PageClear is the control sequence that erases a 4010-compatible screen.
// Senders should emit it before each frame when previewing animations.
var PageClear = []byte{0x1b, 0x0c}
