// Package report 把批量解析结果导出为 Excel 表格。
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"resume-parser-go/internal/types"
)

// SheetName 结果所在的工作表
const SheetName = "Resumes"

var header = []interface{}{
	"Source", "Name", "Email", "Phone", "Confidence",
	"Skills", "Experience", "Projects", "Education", "Error",
}

// Row 一份简历的汇总
type Row struct {
	Source     string
	Record     types.ParseRecord
	Education  int
	Confidence int
	Err        string
}

// WriteXLSX 写出表头和每行汇总。经历、项目、教育只写条目数。
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("设置工作表名失败: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return err
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			r.Source,
			types.StringValue(r.Record.Name),
			types.StringValue(r.Record.Email),
			types.StringValue(r.Record.Phone),
			r.Confidence,
			strings.Join(r.Record.Skills, ", "),
			len(r.Record.Experience),
			len(r.Record.Projects),
			r.Education,
			r.Err,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("写入第 %d 行失败: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "D", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "F", "F", 48); err != nil {
		return err
	}
	if err := f.AutoFilter(SheetName, fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1), nil); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("写出 Excel 失败: %w", err)
	}
	return nil
}
