// Package taxid valida identificaciones tributarias (NIT colombiano) de las empresas.
package taxid

import (
	"fmt"
	"unicode"
)

// pesos del dígito de verificación (módulo 11), aplicados de derecha a izquierda.
var nitWeights = [15]int{3, 7, 13, 17, 19, 23, 29, 37, 41, 43, 47, 53, 59, 67, 71}

// CheckDigit calcula el dígito de verificación del NIT base (sin dígito).
func CheckDigit(base string) (byte, error) {
	digits := extractDigits(base)
	if len(digits) == 0 || len(digits) > len(nitWeights) {
		return 0, fmt.Errorf("taxid: NIT base con %d dígitos", len(digits))
	}
	var sum int
	for i := 0; i < len(digits); i++ {
		d := digits[len(digits)-1-i]
		sum += int(d-'0') * nitWeights[i]
	}
	r := sum % 11
	if r == 0 || r == 1 {
		return byte('0' + r), nil
	}
	return byte('0' + (11 - r)), nil
}

// Normalize valida un NIT con dígito de verificación ("800.197.268-4", "8001972684")
// y lo devuelve en forma canónica "800197268-4".
func Normalize(nit string) (string, error) {
	digits := extractDigits(nit)
	if len(digits) < 6 {
		return "", fmt.Errorf("taxid: NIT demasiado corto (%d dígitos)", len(digits))
	}
	base, dv := digits[:len(digits)-1], digits[len(digits)-1]
	expected, err := CheckDigit(string(base))
	if err != nil {
		return "", err
	}
	if dv != expected {
		return "", fmt.Errorf("taxid: dígito de verificación inválido: esperado %c, recibido %c", expected, dv)
	}
	return string(base) + "-" + string(dv), nil
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
