// Package units converts between wei and the decimal ether strings people
// type and read.
package units

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

var weiPerEther = big.NewInt(params.Ether)

// decimal matches plain decimal amounts: digits with at most one point.
var decimal = regexp.MustCompile(`^([0-9]+\.?[0-9]*|\.[0-9]+)$`)

// ParseEther converts a decimal ether amount such as "0.5" into wei. Signs,
// fractions and exponents are rejected, so is more than 18 decimal places.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty ether amount")
	}

	if !decimal.MatchString(s) {
		return nil, fmt.Errorf("invalid ether amount %q", s)
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid ether amount %q", s)
	}

	r.Mul(r, new(big.Rat).SetInt(weiPerEther))
	if !r.IsInt() {
		return nil, fmt.Errorf("ether amount %q has more than 18 decimals", s)
	}

	return new(big.Int).Set(r.Num()), nil
}

// FormatEther renders wei as a decimal ether amount without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	r := new(big.Rat).SetFrac(wei, weiPerEther)
	s := r.FloatString(18)

	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")

	return s
}
