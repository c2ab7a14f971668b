package chain

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
)

const (
	opReturn    byte = 0x6a
	opPushData1 byte = 0x4c
	opPushData2 byte = 0x4d
	opPushData4 byte = 0x4e
)

var (
	customTxSignature = []byte("DfTx")
)

// Marker byte of a custom transaction carried by the output script, i.e., the
// byte following "DfTx" in the data pushed after OP_RETURN. False if the script
// does not carry a custom transaction.
func CustomTxType(scriptHex string) (byte, bool) {
	script, err := hex.DecodeString(scriptHex)
	if err != nil || len(script) < 2 || script[0] != opReturn {
		return 0, false
	}
	data, ok := pushedData(script[1:])
	if !ok || len(data) <= len(customTxSignature) || !bytes.HasPrefix(data, customTxSignature) {
		return 0, false
	}
	return data[len(customTxSignature)], true
}

// Hex of an OP_RETURN script carrying a custom transaction of the given type
func CustomTxScript(txType byte, payload []byte) string {
	data := append(append(append([]byte{}, customTxSignature...), txType), payload...)
	script := []byte{opReturn}
	switch {
	case len(data) < int(opPushData1):
		script = append(script, byte(len(data)))
	case len(data) <= 0xff:
		script = append(script, opPushData1, byte(len(data)))
	default:
		script = append(script, opPushData2)
		script = binary.LittleEndian.AppendUint16(script, uint16(len(data)))
	}
	return hex.EncodeToString(append(script, data...))
}

// Data of the first push operation of the script
func pushedData(script []byte) ([]byte, bool) {
	op := script[0]
	var start, length int
	switch {
	case op > 0 && op < opPushData1:
		start, length = 1, int(op)
	case op == opPushData1 && len(script) >= 2:
		start, length = 2, int(script[1])
	case op == opPushData2 && len(script) >= 3:
		start, length = 3, int(binary.LittleEndian.Uint16(script[1:3]))
	case op == opPushData4 && len(script) >= 5:
		start, length = 5, int(binary.LittleEndian.Uint32(script[1:5]))
	default:
		return nil, false
	}
	if length < 0 || len(script) < start+length {
		return nil, false
	}
	return script[start : start+length], true
}
