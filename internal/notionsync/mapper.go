package notionsync

import (
	"github.com/jomei/notionapi"

	"github.com/mellowdog/pawdesk/internal/recon"
)

// BalanceRowToNotionProperties converts one balance preview row into Notion
// properties for the outstanding-balances database the front desk reviews.
func BalanceRowToNotionProperties(row *recon.PreviewRow) notionapi.Properties {
	props := notionapi.Properties{
		"Dog": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.DogName,
					},
				},
			},
		},
		"Customer ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.CustomerID,
					},
				},
			},
		},
		"Balance": notionapi.NumberProperty{
			Number: float64(row.Balance),
		},
		"Change": notionapi.NumberProperty{
			Number: float64(row.Change),
		},
		"Status": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: balanceStatus(row.Balance),
			},
		},
	}

	if row.OwnerName != "" {
		props["Owner"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.OwnerName,
					},
				},
			},
		}
	}

	return props
}

func balanceStatus(balance int64) string {
	if balance < 0 {
		return "Owes"
	}
	return "Credit"
}
