// Package files provides input discovery for batch extraction runs.
//
// Discovery scans a directory for supported input files (spreadsheet
// workbooks and JSON element lists), skipping Excel owner lock files, and
// returns them in name order so repeated runs process inputs in the same
// sequence.
package files
