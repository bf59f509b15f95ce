package email

import (
	"fmt"
	"strings"
)

// BillLine represents a priced line in a bill for email purposes
type BillLine struct {
	BookID     string
	Title      string
	Quantity   int
	UnitPrice  int64
	FinalPrice int64
}

// BillSummary carries the frozen bill totals for the confirmation email
type BillSummary struct {
	BillID           string
	Lines            []BillLine
	OriginalSubtotal int64
	TotalSaved       int64
	ShippingCost     int64
	GrandTotal       int64
	AppliedEventName string
}

// BuildBillConfirmationBody builds the HTML body for a bill confirmation email
func BuildBillConfirmationBody(bill BillSummary) string {
	var linesHTML strings.Builder
	for _, line := range bill.Lines {
		title := line.Title
		if title == "" {
			title = line.BookID
		}
		linesHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s₫</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s₫</td>
			</tr>`,
			title,
			line.Quantity,
			formatNumber(line.UnitPrice),
			formatNumber(line.FinalPrice),
		))
	}

	var savedHTML string
	if bill.TotalSaved > 0 {
		label := "Khuyến mãi"
		if bill.AppliedEventName != "" {
			label = fmt.Sprintf("Khuyến mãi (%s)", bill.AppliedEventName)
		}
		savedHTML = fmt.Sprintf(
			`<p style="margin: 5px 0; font-size: 14px; color: #28a745;">%s: -%s₫</p>`,
			label, formatNumber(bill.TotalSaved))
	}

	shipping := formatNumber(bill.ShippingCost) + "₫"
	if bill.ShippingCost == 0 {
		shipping = "Miễn phí"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Cảm ơn bạn đã đặt hàng</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Đơn hàng của bạn đã được ghi nhận và đang chờ xử lý.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Mã đơn hàng</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<h2 style="font-size: 18px; border-bottom: 2px solid #667eea; padding-bottom: 10px;">Chi tiết đơn hàng</h2>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Tên sách</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">SL</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Đơn giá</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Thành tiền</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<p style="margin: 5px 0; font-size: 14px; color: #666;">Tạm tính: %s₫</p>
			%s
			<p style="margin: 5px 0; font-size: 14px; color: #666;">Phí vận chuyển: %s</p>
			<p style="margin: 10px 0 0 0;">
				<span style="font-size: 14px; color: #666;">Tổng cộng</span>
				<span style="font-size: 24px; font-weight: bold; color: #667eea; margin-left: 10px;">%s₫</span>
			</p>
		</div>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			Email này được gửi tự động. Nếu bạn có thắc mắc, vui lòng liên hệ bộ phận hỗ trợ.
		</p>
	</div>
</body>
</html>`, bill.BillID, linesHTML.String(), formatNumber(bill.OriginalSubtotal), savedHTML, shipping, formatNumber(bill.GrandTotal))
}

// formatNumber formats an amount with comma separators
func formatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	remainder := len(str) % 3
	if remainder > 0 {
		result.WriteString(str[:remainder])
		if len(str) > remainder {
			result.WriteString(",")
		}
	}

	for i := remainder; i < len(str); i += 3 {
		result.WriteString(str[i : i+3])
		if i+3 < len(str) {
			result.WriteString(",")
		}
	}

	return result.String()
}
