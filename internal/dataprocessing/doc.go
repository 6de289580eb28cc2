// Package dataprocessing loads raw agent production workbooks into the
// shared ProductionTable contract. It understands CSV files and Excel
// workbooks (where it prefers the "agent summary" worksheet) and performs
// structural validation only: required columns must exist and at least one
// data row must follow the header. Cell contents stay as strings; numeric
// coercion belongs to the analytics pipeline so the two layers test
// independently.
package dataprocessing
