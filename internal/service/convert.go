package service

import (
	"github.com/gana36/billbeam/internal/calculator"
	"github.com/gana36/billbeam/internal/models"
	"github.com/gana36/billbeam/internal/session"
	"github.com/gana36/billbeam/pkg/api"
)

func toAPIPeople(people []models.Person) []api.Person {
	out := make([]api.Person, len(people))
	for i, p := range people {
		out[i] = api.Person{ID: p.ID, Name: p.Name, Color: p.Color}
	}
	return out
}

func fromAPIPeople(people []api.Person) []models.Person {
	out := make([]models.Person, len(people))
	for i, p := range people {
		out[i] = models.Person{ID: p.ID, Name: p.Name, Color: p.Color}
	}
	return out
}

func toAPIReceipt(r *models.Receipt) *api.Receipt {
	if r == nil {
		return nil
	}
	items := make([]api.ReceiptItem, len(r.Items))
	for i, item := range r.Items {
		c := item.Clone()
		items[i] = api.ReceiptItem{
			ID:            c.ID,
			Description:   c.Description,
			Price:         c.Price,
			OriginalPrice: c.OriginalPrice,
			Discount:      c.Discount,
			AssignedTo:    c.AssignedTo,
		}
	}
	return &api.Receipt{
		Title:         r.Title,
		Items:         items,
		Subtotal:      r.Subtotal,
		Tax:           r.Tax,
		Tip:           r.Tip,
		Miscellaneous: r.Miscellaneous,
		Total:         r.Total,
		ImageKey:      r.ImageKey,
	}
}

func fromAPIReceipt(r *api.Receipt) *models.Receipt {
	items := make([]models.ReceiptItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = models.ReceiptItem{
			ID:            item.ID,
			Description:   item.Description,
			Price:         item.Price,
			OriginalPrice: item.OriginalPrice,
			Discount:      item.Discount,
			AssignedTo:    item.AssignedTo,
		}.Clone()
	}
	return &models.Receipt{
		Title:         r.Title,
		Items:         items,
		Tax:           r.Tax,
		Tip:           r.Tip,
		Miscellaneous: r.Miscellaneous,
		ImageKey:      r.ImageKey,
	}
}

func toAPISession(s *session.Session) *api.Session {
	return &api.Session{
		ID:        s.ID,
		Phase:     string(s.Phase),
		SplitMode: string(s.SplitMode),
		Receipt:   toAPIReceipt(s.Receipt),
		People:    toAPIPeople(s.People),
		SavedID:   s.SavedID,
	}
}

func toAPISaved(saved *models.SavedReceipt) *api.SavedReceipt {
	return &api.SavedReceipt{
		ID:        saved.ID,
		Receipt:   *toAPIReceipt(&saved.Receipt),
		People:    toAPIPeople(saved.People),
		CreatedAt: saved.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		People:    toAPIPeople(g.People),
		CreatedAt: g.CreatedAt,
	}
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:           u.ID,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		GoogleLinked: u.GoogleSubject != "",
		CreatedAt:    u.CreatedAt,
	}
}

func toAPILines(lines []calculator.SettlementLine) []api.SettlementLine {
	out := make([]api.SettlementLine, len(lines))
	for i, line := range lines {
		shares := make([]api.ItemShare, len(line.ItemShares))
		for j, share := range line.ItemShares {
			shares[j] = api.ItemShare{
				ItemID:      share.Item.ID,
				Description: share.Item.Description,
				SharePrice:  share.SharePrice,
			}
		}
		out[i] = api.SettlementLine{
			Person:    api.Person{ID: line.Person.ID, Name: line.Person.Name, Color: line.Person.Color},
			Items:     shares,
			Subtotal:  line.Subtotal,
			ExtraCost: line.ExtraCost,
			Total:     line.Total,
		}
	}
	return out
}
