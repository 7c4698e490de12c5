// Package report renders console reports to PDF.
//
// RenderPDF takes a rendered view as an image and splits it into A4 pages,
// each showing one page-height strip of the content. RenderTable lays out
// tabular data directly with repeated headers on every page. Both use
// Paginate for the page arithmetic.
package report
