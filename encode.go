package tracker

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/tracker/date"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// This file persists the tables of the pipeline as delimited text.
//
// Every table is read and written through a local struct with csv tags.
// Dates use the date.Date csv methods. The transaction log is parsed by hand
// so that errors can name the line and the column.

// Columns of the transaction log.
const (
	colSymbol       = "Symbol"
	colType         = "Type"
	colOpenDate     = "Open Date"
	colQty          = "Qty"
	colCostPerShare = "Adj Cost per Share"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// readCSV reads the whole input and checks that the header holds every
// required column. Extra columns are allowed.
func readCSV(r io.Reader, required ...string) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrMalformed, err)
	}
	for _, col := range required {
		if !slices.Contains(header, col) {
			return nil, fmt.Errorf("%w: missing column %q in header %q", ErrMalformed, col, strings.Join(header, ","))
		}
	}
	return data, nil
}

// DecodeTransactions reads a transaction log.
//
// Required columns are Symbol, Type, Open Date, Qty and Adj Cost per Share.
// The cost may be left empty on sells. Any invalid cell is an ErrMalformed.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	type txRow struct {
		Symbol       string `csv:"Symbol"`
		Type         string `csv:"Type"`
		OpenDate     string `csv:"Open Date"`
		Qty          string `csv:"Qty"`
		CostPerShare string `csv:"Adj Cost per Share"`
	}

	data, err := readCSV(r, colSymbol, colType, colOpenDate, colQty, colCostPerShare)
	if err != nil {
		return nil, err
	}
	var rows []*txRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	txs := make([]Transaction, 0, len(rows))
	for i, row := range rows {
		line := i + 2 // 1-based, after the header
		malformed := func(col string, err error) error {
			return fmt.Errorf("%w: line %d column %q: %w", ErrMalformed, line, col, err)
		}
		var tx Transaction
		if tx.Symbol = strings.TrimSpace(row.Symbol); tx.Symbol == "" {
			return nil, malformed(colSymbol, fmt.Errorf("empty symbol"))
		}
		if tx.Type, err = ParseTxType(row.Type); err != nil {
			return nil, malformed(colType, err)
		}
		if tx.OpenDate, err = date.Parse(strings.TrimSpace(row.OpenDate)); err != nil {
			return nil, malformed(colOpenDate, err)
		}
		if tx.Quantity, err = ParseQuantity(row.Qty); err != nil {
			return nil, malformed(colQty, err)
		}
		if cost := strings.TrimSpace(row.CostPerShare); cost != "" || tx.Type == Buy {
			if tx.CostPerShare, err = decimal.NewFromString(cost); err != nil {
				return nil, malformed(colCostPerShare, err)
			}
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// EncodeTransactions writes a transaction log DecodeTransactions can read back.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	type txRow struct {
		Symbol       string    `csv:"Symbol"`
		Type         string    `csv:"Type"`
		OpenDate     date.Date `csv:"Open Date"`
		Qty          string    `csv:"Qty"`
		CostPerShare string    `csv:"Adj Cost per Share"`
	}
	rows := make([]*txRow, 0, len(txs))
	for _, tx := range txs {
		row := &txRow{
			Symbol:   tx.Symbol,
			Type:     string(tx.Type),
			OpenDate: tx.OpenDate,
			Qty:      tx.Quantity.String(),
		}
		if tx.Type == Buy {
			row.CostPerShare = tx.CostPerShare.String()
		}
		rows = append(rows, row)
	}
	return gocsv.Marshal(&rows, w)
}

// DecodePrices reads a table of daily closes with columns Ticker, Date and Close.
// An empty Close cell means no data for that day and the row is skipped.
func DecodePrices(r io.Reader) ([]Close, error) {
	type priceRow struct {
		Ticker string    `csv:"Ticker"`
		Date   date.Date `csv:"Date"`
		Close  string    `csv:"Close"`
	}

	data, err := readCSV(r, "Ticker", "Date", "Close")
	if err != nil {
		return nil, err
	}
	var rows []*priceRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	closes := make([]Close, 0, len(rows))
	for i, row := range rows {
		cell := strings.TrimSpace(row.Close)
		if cell == "" {
			continue
		}
		v, err := decimal.NewFromString(cell)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d column %q: %w", ErrMalformed, i+2, "Close", err)
		}
		closes = append(closes, Close{Ticker: strings.TrimSpace(row.Ticker), Date: row.Date, Close: v})
	}
	return closes, nil
}

// EncodePrices writes closes in the format DecodePrices reads.
func EncodePrices(w io.Writer, closes []Close) error {
	type priceRow struct {
		Ticker string    `csv:"Ticker"`
		Date   date.Date `csv:"Date"`
		Close  string    `csv:"Close"`
	}
	rows := make([]*priceRow, 0, len(closes))
	for _, c := range closes {
		rows = append(rows, &priceRow{Ticker: c.Ticker, Date: c.Date, Close: c.Close.String()})
	}
	return gocsv.Marshal(&rows, w)
}

// cell formats a nullable decimal, null is an empty cell.
func cell(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// EncodeValuations writes the valuation table, one row per lot per day, in the
// order of rows. Null values are empty cells. The output only depends on rows.
func EncodeValuations(w io.Writer, rows []Valuation) error {
	type valuationRow struct {
		Date                 date.Date `csv:"Date"`
		Symbol               string    `csv:"Symbol"`
		OpenDate             date.Date `csv:"Open Date"`
		Qty                  string    `csv:"Qty"`
		CostPerShare         string    `csv:"Adj Cost per Share"`
		Close                string    `csv:"Close"`
		AdjCostDaily         string    `csv:"Adj cost daily"`
		BenchmarkClose       string    `csv:"Benchmark Close"`
		BenchmarkEndClose    string    `csv:"Benchmark End Date Close"`
		BenchmarkStartClose  string    `csv:"Benchmark Start Date Close"`
		TickerEndClose       string    `csv:"Ticker End Date Close"`
		TickerStartClose     string    `csv:"Ticker Start Date Close"`
		AdjCostPerShare      string    `csv:"Adj cost per share"`
		AdjCost              string    `csv:"Adj cost"`
		EquivBenchmarkShares string    `csv:"Equiv Benchmark Shares"`
		BenchmarkStartCost   string    `csv:"Benchmark Start Date Cost"`
		BenchmarkReturn      string    `csv:"Benchmark Return"`
		TickerReturn         string    `csv:"Ticker Return"`
		TickerShareValue     string    `csv:"Ticker Share Value"`
		BenchmarkShareValue  string    `csv:"Benchmark Share Value"`
		StockGain            string    `csv:"Stock Gain / (Loss)"`
		BenchmarkGain        string    `csv:"Benchmark Gain / (Loss)"`
		AbsValueCompare      string    `csv:"Abs Value Compare"`
		AbsValueReturn       string    `csv:"Abs Value Return"`
		AbsReturnCompare     string    `csv:"Abs. Return Compare"`
	}
	out := make([]*valuationRow, 0, len(rows))
	for _, v := range rows {
		out = append(out, &valuationRow{
			Date:                 v.Date,
			Symbol:               v.Symbol,
			OpenDate:             v.OpenDate,
			Qty:                  v.Quantity.String(),
			CostPerShare:         v.CostPerShare.String(),
			Close:                cell(v.Close),
			AdjCostDaily:         cell(v.AdjCostDaily),
			BenchmarkClose:       cell(v.BenchmarkClose),
			BenchmarkEndClose:    cell(v.BenchmarkEndClose),
			BenchmarkStartClose:  cell(v.BenchmarkStartClose),
			TickerEndClose:       cell(v.TickerEndClose),
			TickerStartClose:     cell(v.TickerStartClose),
			AdjCostPerShare:      cell(v.AdjCostPerShare),
			AdjCost:              cell(v.AdjCost),
			EquivBenchmarkShares: cell(v.EquivBenchmarkShares),
			BenchmarkStartCost:   cell(v.BenchmarkStartCost),
			BenchmarkReturn:      cell(v.BenchmarkReturn),
			TickerReturn:         cell(v.TickerReturn),
			TickerShareValue:     cell(v.TickerShareValue),
			BenchmarkShareValue:  cell(v.BenchmarkShareValue),
			StockGain:            cell(v.StockGain),
			BenchmarkGain:        cell(v.BenchmarkGain),
			AbsValueCompare:      cell(v.AbsValueCompare),
			AbsValueReturn:       cell(v.AbsValueReturn),
			AbsReturnCompare:     cell(v.AbsReturnCompare),
		})
	}
	return gocsv.Marshal(&out, w)
}

// EncodeSeries writes aggregated series in long format: one row per series, day and metric.
func EncodeSeries(w io.Writer, series ...*Series) error {
	type seriesRow struct {
		Series string    `csv:"Series"`
		Date   date.Date `csv:"Date"`
		Metric string    `csv:"Metric"`
		Value  string    `csv:"Value"`
	}
	var rows []*seriesRow
	for _, s := range series {
		for i, day := range s.Days {
			for m, metric := range s.Metrics {
				rows = append(rows, &seriesRow{
					Series: s.Name,
					Date:   day,
					Metric: string(metric),
					Value:  cell(s.Values[m][i]),
				})
			}
		}
	}
	return gocsv.Marshal(&rows, w)
}
