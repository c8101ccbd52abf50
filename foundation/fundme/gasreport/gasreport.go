// Package gasreport collects the gas used by contract calls and
// deployments and renders a report priced in the reference currency.
package gasreport

import (
	"cmp"
	"fmt"
	"io"
	"math/big"
	"os"
	"slices"
	"sync"
	"text/tabwriter"

	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Config controls how the report is rendered.
type Config struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"`
	NoColors   bool   `yaml:"no_colors"`
	Currency   string `yaml:"currency"`
	Token      string `yaml:"token"`
}

// stats tracks the gas used for a single method or deployment.
type stats struct {
	calls int
	min   uint64
	max   uint64
	total uint64
}

func (s *stats) add(gasUsed uint64) {
	if s.calls == 0 || gasUsed < s.min {
		s.min = gasUsed
	}
	if gasUsed > s.max {
		s.max = gasUsed
	}
	s.total += gasUsed
	s.calls++
}

type key struct {
	contract string
	method   string
}

// Reporter records gas usage. The zero value is not usable, use New.
type Reporter struct {
	mu          sync.Mutex
	methods     map[key]*stats
	deployments map[string]*stats
}

// New constructs a reporter for use.
func New() *Reporter {
	return &Reporter{
		methods:     make(map[key]*stats),
		deployments: make(map[string]*stats),
	}
}

// RecordCall adds the gas used by a contract method call.
func (r *Reporter) RecordCall(contract string, method string, gasUsed uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{contract: contract, method: method}
	s, exists := r.methods[k]
	if !exists {
		s = &stats{}
		r.methods[k] = s
	}
	s.add(gasUsed)
}

// RecordDeployment adds the gas used to deploy a contract.
func (r *Reporter) RecordDeployment(contract string, gasUsed uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.deployments[contract]
	if !exists {
		s = &stats{}
		r.deployments[contract] = s
	}
	s.add(gasUsed)
}

// =============================================================================

// Row is a single line of the report.
type Row struct {
	Contract string `json:"contract"`
	Method   string `json:"method,omitempty"`
	Min      uint64 `json:"min"`
	Max      uint64 `json:"max"`
	Avg      uint64 `json:"avg"`
	Calls    int    `json:"calls"`
	Cost     string `json:"cost,omitempty"`
}

// Report is the priced summary of the recorded gas usage.
type Report struct {
	GasPrice    uint64 `json:"gas_price"`
	Token       string `json:"token"`
	Currency    string `json:"currency"`
	TokenPrice  string `json:"token_price,omitempty"`
	Methods     []Row  `json:"methods"`
	Deployments []Row  `json:"deployments"`
	price       *pricefeed.Price
}

// Report builds the summary. The price is optional, without it the
// cost column is left empty.
func (r *Reporter) Report(cfg Config, gasPrice uint64, price *pricefeed.Price) Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	rpt := Report{
		GasPrice: gasPrice,
		Token:    cmp.Or(cfg.Token, "ETH"),
		Currency: cmp.Or(cfg.Currency, "USD"),
		price:    price,
	}

	if price != nil && price.Validate() == nil {
		rpt.TokenPrice = price.String()
	} else {
		rpt.price = nil
	}

	for k, s := range r.methods {
		rpt.Methods = append(rpt.Methods, rpt.row(k.contract, k.method, s))
	}
	for contract, s := range r.deployments {
		rpt.Deployments = append(rpt.Deployments, rpt.row(contract, "", s))
	}

	byName := func(a, b Row) int {
		return cmp.Or(cmp.Compare(a.Contract, b.Contract), cmp.Compare(a.Method, b.Method))
	}
	slices.SortFunc(rpt.Methods, byName)
	slices.SortFunc(rpt.Deployments, byName)

	return rpt
}

func (rpt Report) row(contract string, method string, s *stats) Row {
	avg := s.total / uint64(s.calls)

	return Row{
		Contract: contract,
		Method:   method,
		Min:      s.min,
		Max:      s.max,
		Avg:      avg,
		Calls:    s.calls,
		Cost:     rpt.cost(avg),
	}
}

// cost prices the gas in the reference currency.
func (rpt Report) cost(gasUsed uint64) string {
	if rpt.price == nil {
		return ""
	}

	wei := new(big.Int).SetUint64(gasUsed)
	wei.Mul(wei, new(big.Int).SetUint64(rpt.GasPrice))

	value := new(big.Float).SetInt(wei)
	value.Mul(value, new(big.Float).SetInt(rpt.price.Answer))

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(18+int(rpt.price.Decimals))), nil)
	value.Quo(value, new(big.Float).SetInt(scale))

	return value.Text('f', 2)
}

// =============================================================================

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Render writes the report as a table.
func (rpt Report) Render(w io.Writer, noColors bool) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	header := func(s string) string {
		if noColors {
			return s
		}
		return ansiBold + s + ansiReset
	}

	gwei := new(big.Float).Quo(new(big.Float).SetUint64(rpt.GasPrice), big.NewFloat(1e9))
	fmt.Fprintf(tw, "%s\n", header("Gas Report"))
	fmt.Fprintf(tw, "Gas price:\t%s gwei\n", gwei.Text('f', 2))
	if rpt.TokenPrice != "" {
		fmt.Fprintf(tw, "%s price:\t%s %s\n", rpt.Token, rpt.TokenPrice, rpt.Currency)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "%s\n", header("Methods"))
	fmt.Fprintf(tw, "Contract\tMethod\tMin\tMax\tAvg\t# calls\t%s (avg)\n", rpt.Currency)
	for _, row := range rpt.Methods {
		fmt.Fprint(tw, p.Sprintf("%s\t%s\t%d\t%d\t%d\t%d\t%s\n", row.Contract, row.Method, row.Min, row.Max, row.Avg, row.Calls, row.Cost))
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "%s\n", header("Deployments"))
	fmt.Fprintf(tw, "Contract\t\tMin\tMax\tAvg\t# deploys\t%s (avg)\n", rpt.Currency)
	for _, row := range rpt.Deployments {
		fmt.Fprint(tw, p.Sprintf("%s\t\t%d\t%d\t%d\t%d\t%s\n", row.Contract, row.Min, row.Max, row.Avg, row.Calls, row.Cost))
	}

	return tw.Flush()
}

// WriteFile renders the report into the configured output file.
func (rpt Report) WriteFile(cfg Config) error {
	if cfg.OutputFile == "" {
		return rpt.Render(os.Stdout, cfg.NoColors)
	}

	f, err := os.Create(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("creating gas report: %w", err)
	}
	defer f.Close()

	if err := rpt.Render(f, cfg.NoColors); err != nil {
		return fmt.Errorf("writing gas report: %w", err)
	}

	return nil
}
