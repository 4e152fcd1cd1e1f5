package superbus

import "strings"

// Zone and touchpad text arrives as display tokens, not ASCII. Single
// characters live in the low range, whole words above 0x2F. The table is
// from the vendor token list; anything unassigned renders as "@".
var tokenTable = map[byte]string{
	0x00: "0", 0x01: "1", 0x02: "2", 0x03: "3", 0x04: "4",
	0x05: "5", 0x06: "6", 0x07: "7", 0x08: "8", 0x09: "9",
	0x0c: "#", 0x0d: ":", 0x0e: "/", 0x0f: "?", 0x10: ".",
	0x11: "A", 0x12: "B", 0x13: "C", 0x14: "D", 0x15: "E",
	0x16: "F", 0x17: "G", 0x18: "H", 0x19: "I", 0x1a: "J",
	0x1b: "K", 0x1c: "L", 0x1d: "M", 0x1e: "N", 0x1f: "O",
	0x20: "P", 0x21: "Q", 0x22: "R", 0x23: "S", 0x24: "T",
	0x25: "U", 0x26: "V", 0x27: "W", 0x28: "X", 0x29: "Y",
	0x2a: "Z", 0x2b: " ", 0x2c: "'", 0x2d: "-", 0x2e: "_",
	0x2f: "*",
	0x30: "AC POWER", 0x31: "ACCESS", 0x32: "ACCOUNT", 0x33: "ALARM",
	0x34: "ALL", 0x35: "ARM", 0x36: "ARMING", 0x37: "AREA",
	0x38: "ATTIC", 0x39: "AUTO", 0x3a: "AUXILIARY", 0x3b: "AWAY",
	0x3c: "BACK", 0x3d: "BATTERY", 0x3e: "BEDROOM", 0x3f: "BEEPS",
	0x40: "BOTTOM", 0x41: "BREEZEWAY", 0x42: "BASEMENT", 0x43: "BATHROOM",
	0x44: "BUS", 0x45: "BYPASS", 0x46: "BYPASSED", 0x47: "CABINET",
	0x48: "CANCELED", 0x49: "CARPET", 0x4a: "CHIME", 0x4b: "CLOSET",
	0x4c: "CLOSING", 0x4d: "CODE", 0x4e: "CONTROL", 0x4f: "CPU",
	0x50: "DEGREES", 0x51: "DEN", 0x52: "DESK", 0x53: "DELAY",
	0x54: "DELETE", 0x55: "DINING", 0x56: "DIRECT", 0x57: "DOOR",
	0x58: "DOWN", 0x59: "DOWNLOAD", 0x5a: "DOWNSTAIRS", 0x5b: "DRAWER",
	0x5c: "DISPLAY", 0x5d: "DURESS", 0x5e: "EAST", 0x5f: "ENERGY SAVER",
	0x60: "ENTER", 0x61: "ENTRY", 0x62: "ERROR", 0x63: "EXIT",
	0x64: "FAIL", 0x65: "FAILURE", 0x66: "FAMILY", 0x67: "FEATURES",
	0x68: "FIRE", 0x69: "FIRST", 0x6a: "FLOOR", 0x6b: "FORCE",
	0x6c: "FORMAT", 0x6d: "FREEZE", 0x6e: "FRONT", 0x6f: "FURNACE",
	0x70: "GARAGE", 0x71: "GALLERY", 0x72: "GOODBYE", 0x73: "GROUP",
	0x74: "HALL", 0x75: "HEAT", 0x76: "HELLO", 0x77: "HELP",
	0x78: "HIGH", 0x79: "HOURLY", 0x7a: "HOUSE", 0x7b: "IMMEDIATE",
	0x7c: "IN SERVICE", 0x7d: "INTERIOR", 0x7e: "INTRUSION", 0x7f: "INVALID",
	0x80: "IS", 0x81: "KEY", 0x82: "KITCHEN", 0x83: "LAUNDRY",
	0x84: "LEARN", 0x85: "LEFT", 0x86: "LIBRARY", 0x87: "LEVEL",
	0x88: "LIGHT", 0x89: "LIGHTS", 0x8a: "LIVING", 0x8b: "LOW",
	0x8c: "MAIN", 0x8d: "MASTER", 0x8e: "MEDICAL", 0x8f: "MEMORY",
	0x90: "MIN", 0x91: "MODE", 0x92: "MOTION", 0x93: "NIGHT",
	0x94: "NORTH", 0x95: "NOT", 0x96: "NUMBER", 0x97: "OFF",
	0x98: "OFFICE", 0x99: "OK", 0x9a: "ON", 0x9b: "OPEN",
	0x9c: "OPENING", 0x9d: "PANIC", 0x9e: "PARTITION", 0x9f: "PATIO",
	0xa0: "PHONE", 0xa1: "POLICE", 0xa2: "POOL", 0xa3: "PORCH",
	0xa4: "PRESS", 0xa5: "QUIET", 0xa6: "QUICK", 0xa7: "RECEIVER",
	0xa8: "REAR", 0xa9: "REPORT", 0xaa: "REMOTE", 0xab: "RESTORE",
	0xac: "RIGHT", 0xad: "ROOM", 0xae: "SCHEDULE", 0xaf: "SCRIPT",
	0xb0: "SEC", 0xb1: "SECOND", 0xb2: "SET", 0xb3: "SENSOR",
	0xb4: "SHOCK", 0xb5: "SIDE", 0xb6: "SIREN", 0xb7: "SLIDING",
	0xb8: "SMOKE", 0xb9: "Sn", 0xba: "SOUND", 0xbb: "SOUTH",
	0xbc: "SPECIAL", 0xbd: "STAIRS", 0xbe: "START", 0xbf: "STATUS",
	0xc0: "STAY", 0xc1: "STOP", 0xc2: "SUPERVISORY", 0xc3: "SYSTEM",
	0xc4: "TAMPER", 0xc5: "TEMPERATURE", 0xc6: "TEMPORARY", 0xc7: "TEST",
	0xc8: "TIME", 0xc9: "TIMEOUT", 0xca: "TOUCHPAD", 0xcb: "TRIP",
	0xcc: "TROUBLE", 0xcd: "UNBYPASS", 0xce: "UNIT", 0xcf: "UP",
	0xd0: "VERIFY", 0xd1: "VIOLATION", 0xd2: "WARNING", 0xd3: "WEST",
	0xd4: "WINDOW", 0xd5: "MENU", 0xd6: "RETURN", 0xd7: "POUND",
	0xd8: "HOME",
	0xf9: "\n", 0xfa: " ", 0xfb: "\n",
	0xfe: "<blink>",
}

const tokenBackspace = 0xfd

// DecodeTokens renders a display-token sequence as text. Word tokens are
// separated by a space; a backspace token erases the previous character.
func DecodeTokens(tokens []byte) string {
	var b strings.Builder
	for i, t := range tokens {
		if t == tokenBackspace {
			s := b.String()
			if len(s) > 0 {
				s = s[:len(s)-1]
			}
			b.Reset()
			b.WriteString(s)
			continue
		}
		w, ok := tokenTable[t]
		if !ok {
			w = "@"
		}
		b.WriteString(w)
		if len(w) > 1 && i < len(tokens)-1 && !strings.HasPrefix(w, "<") {
			b.WriteString(" ")
		}
	}
	return b.String()
}
