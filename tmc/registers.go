package tmc

// TMC2209 register addresses.
const (
	RegGCONF      = 0x00
	RegGSTAT      = 0x01
	RegIFCNT      = 0x02
	RegIOIN       = 0x06
	RegIHOLDIRUN  = 0x10
	RegTPOWERDOWN = 0x11
	RegTSTEP      = 0x12
	RegTPWMTHRS   = 0x13
	RegTCOOLTHRS  = 0x14
	RegVACTUAL    = 0x22
	RegSGTHRS     = 0x40
	RegSGRESULT   = 0x41
	RegMSCNT      = 0x6A
	RegCHOPCONF   = 0x6C
	RegDRVSTATUS  = 0x6F
	RegPWMCONF    = 0x70
)

// GCONF bits.
const (
	gconfEnSpreadCycle  = 1 << 2
	gconfPDNDisable     = 1 << 6
	gconfMStepRegSelect = 1 << 7
)

// CHOPCONF fields.
const (
	chopconfVSense    = 1 << 17
	chopconfMResShift = 24
	chopconfMResMask  = 0xF << chopconfMResShift
)

// IHOLD_IRUN field offsets.
const (
	iholdShift      = 0
	irunShift       = 8
	iholdDelayShift = 16
)

// readableRegisters drives the register dump, in datasheet order.
var readableRegisters = []struct {
	Name string
	Reg  uint8
}{
	{"GCONF", RegGCONF},
	{"GSTAT", RegGSTAT},
	{"IFCNT", RegIFCNT},
	{"IOIN", RegIOIN},
	{"TSTEP", RegTSTEP},
	{"TPWMTHRS", RegTPWMTHRS},
	{"TCOOLTHRS", RegTCOOLTHRS},
	{"SGTHRS", RegSGTHRS},
	{"SG_RESULT", RegSGRESULT},
	{"MSCNT", RegMSCNT},
	{"CHOPCONF", RegCHOPCONF},
	{"DRV_STATUS", RegDRVSTATUS},
	{"PWMCONF", RegPWMCONF},
}
