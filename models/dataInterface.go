package models

// DataInterface is what the dataloaders need from a row: its primary key.
type DataInterface interface {
	GetId() int
}

func (u *User) GetId() int               { return u.ID }
func (c *Client) GetId() int             { return c.ID }
func (c *Case) GetId() int               { return c.ID }
func (t *TimeEntry) GetId() int          { return t.ID }
func (i *Invoice) GetId() int            { return i.ID }
func (a *CaseApproval) GetId() int       { return a.ID }
func (h *CaseBillingHistory) GetId() int { return h.ID }
