package postgres

import (
	"github.com/petofy/petcare-payments/internal/domain"
)

func toPaymentDomain(m PaymentModel) *domain.PaymentRecord {
	return &domain.PaymentRecord{
		ID:               m.ID,
		GatewayOrderID:   m.GatewayOrderID,
		GatewayPaymentID: m.GatewayPaymentID,
		Amount:           m.Amount,
		Currency:         m.Currency,
		Status:           domain.PaymentStatus(m.Status),
		Method:           domain.PaymentMethod(m.Method),
		CustomerName:     m.CustomerName,
		CustomerEmail:    m.CustomerEmail,
		CustomerPhone:    m.CustomerPhone,
		Signature:        m.Signature,
		DemoMode:         m.DemoMode,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		CompletedAt:      m.CompletedAt,
	}
}

func toPaymentModel(p *domain.PaymentRecord) *PaymentModel {
	return &PaymentModel{
		ID:               p.ID,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Status:           string(p.Status),
		Method:           string(p.Method),
		CustomerName:     p.CustomerName,
		CustomerEmail:    p.CustomerEmail,
		CustomerPhone:    p.CustomerPhone,
		Signature:        p.Signature,
		DemoMode:         p.DemoMode,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		CompletedAt:      p.CompletedAt,
	}
}

func toCustomerDomain(m CustomerModel) *domain.CustomerIdentity {
	return &domain.CustomerIdentity{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     deref(m.Email),
		Phone:     deref(m.Phone),
		Address:   deref(m.Address),
		City:      deref(m.City),
		State:     deref(m.State),
		Pincode:   deref(m.Pincode),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toCustomerModel(c *domain.CustomerIdentity) *CustomerModel {
	return &CustomerModel{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     nilIfEmpty(c.Email),
		Phone:     nilIfEmpty(c.Phone),
		Address:   nilIfEmpty(c.Address),
		City:      nilIfEmpty(c.City),
		State:     nilIfEmpty(c.State),
		Pincode:   nilIfEmpty(c.Pincode),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toBookingDomain(m BookingCaseModel) *domain.BookingCase {
	return &domain.BookingCase{
		ID:             m.ID,
		CaseRef:        m.CaseRef,
		CustomerID:     m.CustomerID,
		ServiceTypeID:  m.ServiceTypeID,
		GatewayOrderID: deref(m.GatewayOrderID),
		ScheduledAt:    m.ScheduledAt,
		Amount:         m.Amount,
		PaymentStatus:  domain.CasePaymentStatus(m.PaymentStatus),
		AgentID:        m.AgentID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toBookingModel(b *domain.BookingCase) *BookingCaseModel {
	return &BookingCaseModel{
		ID:             b.ID,
		CaseRef:        b.CaseRef,
		CustomerID:     b.CustomerID,
		ServiceTypeID:  b.ServiceTypeID,
		GatewayOrderID: nilIfEmpty(b.GatewayOrderID),
		ScheduledAt:    b.ScheduledAt,
		Amount:         b.Amount,
		PaymentStatus:  string(b.PaymentStatus),
		AgentID:        b.AgentID,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
