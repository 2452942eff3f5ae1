package telemetry

import "fmt"

// Numeric source code ranges used by the lab network. Packets identify their
// emitter with a small integer; the ranges below map those codes back to the
// stable node names used as marker identifiers.
const (
	srcRobotatServer = 0
	srcUserPC        = 1
	srcPololuFirst   = 10
	srcPololuLast    = 42
	srcCrazyflieFrst = 50
	srcCrazyflieLast = 70
	srcMaxArmFirst   = 80
	srcMaxArmLast    = 100
)

// SourceName translates a numeric source code into a node name. Unknown codes
// keep a stable synthetic name so they still get their own marker record.
func SourceName(code int64) string {
	switch {
	case code == srcRobotatServer:
		return "ROBOTAT_SERVER"
	case code == srcUserPC:
		return "USER_PC"
	case code >= srcPololuFirst && code <= srcPololuLast:
		return fmt.Sprintf("POLOLU_%02d", code-srcPololuFirst)
	case code >= srcCrazyflieFrst && code <= srcCrazyflieLast:
		return fmt.Sprintf("CRAZYFLIE_%02d", code-srcCrazyflieFrst)
	case code >= srcMaxArmFirst && code <= srcMaxArmLast:
		return fmt.Sprintf("MAXARM_%02d", code-srcMaxArmFirst)
	default:
		return fmt.Sprintf("SRC_%d", code)
	}
}
