package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"b3quant/internal/domain"
)

// Compile-time interface check.
var _ CompanyStore = (*CSVCompanyStore)(nil)

// companyHeader is the canonical column order of the reference file. The
// names follow the CVM-style convention of the upstream registry export.
var companyHeader = []string{
	"COD_CVM", "SIGLA", "RAZAO_SOCIAL", "NOME_FANTASIA", "CNPJ",
	"SEGMENTO", "MERCADO", "DT_LISTAGEM", "STATUS", "ATIVIDADE",
	"WEBSITE", "CODES", "ISINS",
}

// CSVCompanyStore implements CompanyStore as a flat CSV reference file.
type CSVCompanyStore struct {
	Path string
}

// NewCSVCompanyStore creates a CSVCompanyStore backed by the file at path.
func NewCSVCompanyStore(path string) *CSVCompanyStore {
	return &CSVCompanyStore{Path: path}
}

// Exists reports whether the reference file is already present.
func (s *CSVCompanyStore) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// ReadCompanies reads the reference file. A header that does not match the
// canonical schema is an error: the file is the pipeline's source of truth
// for entity ids and must not be guessed at.
func (s *CSVCompanyStore) ReadCompanies(_ context.Context) ([]domain.Company, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", s.Path, err)
	}
	if err := checkHeader(header); err != nil {
		return nil, fmt.Errorf("company file %s: %w", s.Path, err)
	}

	var companies []domain.Company
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("company file %s: %w", s.Path, err)
		}
		if len(row) != len(companyHeader) {
			return nil, fmt.Errorf("company file %s: row has %d columns, want %d", s.Path, len(row), len(companyHeader))
		}
		companies = append(companies, domain.Company{
			CVMCode:     row[0],
			Issuer:      row[1],
			CompanyName: row[2],
			TradingName: row[3],
			CNPJ:        row[4],
			Segment:     row[5],
			Market:      row[6],
			ListingDate: row[7],
			Status:      row[8],
			Activity:    row[9],
			Website:     row[10],
			Codes:       splitList(row[11]),
			ISINs:       splitList(row[12]),
		})
	}
	return companies, nil
}

// WriteCompanies replaces the reference file with the given companies.
func (s *CSVCompanyStore) WriteCompanies(_ context.Context, companies []domain.Company) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(companyHeader); err != nil {
		return err
	}
	for _, c := range companies {
		row := []string{
			c.CVMCode, c.Issuer, c.CompanyName, c.TradingName, c.CNPJ,
			c.Segment, c.Market, c.ListingDate, c.Status, c.Activity,
			c.Website, joinList(c.Codes), joinList(c.ISINs),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func checkHeader(header []string) error {
	if len(header) != len(companyHeader) {
		return fmt.Errorf("malformed schema: %d columns, want %d", len(header), len(companyHeader))
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), companyHeader[i]) {
			return fmt.Errorf("malformed schema: column %d is %q, want %q", i, col, companyHeader[i])
		}
	}
	return nil
}

// Codes and ISINs are stored as semicolon-joined lists inside one CSV cell.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinList(items []string) string {
	return strings.Join(items, ";")
}
