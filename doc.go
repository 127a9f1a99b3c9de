// Package tracker reconstructs the open positions of a personal portfolio from
// its buy/sell log and values them day by day against a benchmark.
//
// The pipeline has four stages:
//   - Lot matching: sells deplete the oldest open buy lots first (FIFO).
//   - Reconstruction: the lots open at the start of an analysis window are
//     computed by netting every prior sell against prior buys.
//   - Snapshots: starting from that balance, later sells are replayed day by
//     day and one snapshot of open lots is emitted per trading day.
//   - Valuation: snapshots are joined to daily closes and to a benchmark,
//     cost bases predating the window are trued-up to the first window close,
//     and window-relative returns are derived.
//
// Quantities and prices are exact decimals. Missing market data never turns
// into a zero: it leaves the affected valuation fields null.
//
// This package serves as the foundational logic for the `ptrack` command-line
// tool.
package tracker
