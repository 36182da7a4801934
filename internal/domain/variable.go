package domain

import "strings"

// Variable labels as they appear in the "VALOR MEDIO DE" column.
const (
	VarTemperature    = "TEMPERATURA (°C)"
	VarMaxTemperature = "TEMPERATURA MÁXIMA (°C)"
	VarMinTemperature = "TEMPERATURA MÍNIMA (°C)"
	VarHumidity       = "HUMEDAD RELATIVA (%)"
	VarWindSpeed      = "VELOCIDAD DEL VIENTO (KM/H)"
)

// SameVariable compares two variable labels ignoring case and padding.
func SameVariable(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// VariableKind returns the second word of a variable label, e.g. "MÁXIMA"
// for "TEMPERATURA MÁXIMA (°C)". Single word labels return themselves.
func VariableKind(label string) string {
	fields := strings.Fields(label)
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	default:
		return fields[1]
	}
}
