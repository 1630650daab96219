package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"agronorte-pos/internal/models"
)

// HistoryView is the slice of the POS the assistant may read: finalized
// sales only, as snapshots. It never mutates anything.
type HistoryView interface {
	History() []models.Sale
}

// RunAgent answers an operator question about the sales history using
// Gemini with tool calling. The model can pull a date-range revenue report
// or list the most recent sales; everything is computed from the in-memory
// history snapshot.
func RunAgent(userMessage string, apiKey string, view HistoryView) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")

	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the AGRONORTE POS sales assistant.

	RULES:
	1. REVENUE: If the user asks about revenue, totals or how many sales were made, you MUST call 'get_sales_report' with a date range. For "today", use today's date for both start and end.
	2. SALES: If the user asks about specific sales, customers or what was sold, call 'list_recent_sales' and read the JSON to answer.
	3. Amounts are in Brazilian reais (R$). Answer in the language the user wrote in.

	USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "get_sales_report",
					Description: "Get total revenue and sale count for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
				{
					Name:        "list_recent_sales",
					Description: "List the most recent finalized sales with their daily number, date, total, customer and items.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"limit": {Type: genai.TypeInteger, Description: "How many sales to return (default 10)"},
						},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			if funcCall.Name == "get_sales_report" {
				return executeSalesReport(ctx, session, funcCall, view), nil
			}
			if funcCall.Name == "list_recent_sales" {
				return executeListSales(ctx, session, funcCall, view), nil
			}
		}
	}

	return printResponse(resp), nil
}

func executeSalesReport(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall, view HistoryView) string {
	args := funcCall.Args
	startStr, _ := args["start_date"].(string)
	endStr, _ := args["end_date"].(string)

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)
	if err1 != nil || err2 != nil {
		return "Error: Dates must be in YYYY-MM-DD format."
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	report := RangeReport(view.History(), start, end)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_sales_report",
		Response: map[string]interface{}{
			"revenue":     report.TotalRevenue.StringFixed(2),
			"sales_count": report.TotalCount,
		},
	})
	if err != nil {
		return "Error reading the sales report."
	}
	return printResponse(finalResp)
}

func executeListSales(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall, view HistoryView) string {
	limit := 10
	if raw, ok := funcCall.Args["limit"].(float64); ok && raw > 0 {
		limit = int(raw)
	}

	sales := view.History()
	if len(sales) > limit {
		sales = sales[:limit]
	}

	type simpleItem struct {
		Name     string `json:"name"`
		Quantity string `json:"quantity"`
		Subtotal string `json:"subtotal"`
	}
	type simpleSale struct {
		Number   int          `json:"numero_venda"`
		Date     string       `json:"date"`
		Total    string       `json:"total"`
		Customer string       `json:"customer,omitempty"`
		Payment  string       `json:"payment,omitempty"`
		Items    []simpleItem `json:"items"`
	}

	simpleList := make([]simpleSale, 0, len(sales))
	for _, sale := range sales {
		entry := simpleSale{
			Number:   sale.DisplaySequence,
			Date:     sale.Timestamp.Local().Format("2006-01-02 15:04"),
			Total:    sale.Total.StringFixed(2),
			Customer: sale.CustomerName,
			Payment:  sale.PaymentMethod,
		}
		for _, item := range sale.Items {
			entry.Items = append(entry.Items, simpleItem{
				Name:     item.ProductName,
				Quantity: item.Quantity.String() + " " + item.QuantityUnit.Label(),
				Subtotal: item.Subtotal.StringFixed(2),
			})
		}
		simpleList = append(simpleList, entry)
	}

	jsonBytes, _ := json.Marshal(simpleList)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "list_recent_sales",
		Response: map[string]interface{}{"sales": string(jsonBytes)},
	})
	if err != nil {
		return "Error reading the sales list."
	}
	return printResponse(finalResp)
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
