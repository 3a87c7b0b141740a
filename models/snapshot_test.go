package models

import "testing"

func TestSnapshotLookups(t *testing.T) {
	s := &Snapshot{
		Partners:         []Partner{{ID: 1, Name: "Supplier A"}},
		Items:            []Item{{ID: 5, Name: "Bale"}},
		OriginalTypes:    []OriginalType{{ID: 3, Name: "Cotton"}},
		OriginalProducts: []OriginalProduct{{ID: 4, Name: "Grade A"}},
		Purchases:        []Purchase{{ID: 9, BatchNumber: "11001"}},
		OngoingOrders:    []OngoingOrder{{ID: 2, OrderNumber: "ORD-2"}},
		SalesInvoices:    []SalesInvoice{{ID: 8, InvoiceNumber: "SINV-1001"}},
		Divisions:        []Division{{ID: 6}},
		SubDivisions:     []SubDivision{{ID: 7}},
	}
	if p := s.Partner(1); p == nil || p.Name != "Supplier A" {
		t.Fatalf("Partner(1) = %+v", p)
	}
	if s.Partner(2) != nil {
		t.Fatalf("Partner(2) should be nil")
	}
	if i := s.Item(5); i == nil || i.Name != "Bale" {
		t.Fatalf("Item(5) = %+v", i)
	}
	if o := s.OriginalType(3); o == nil || o.Name != "Cotton" {
		t.Fatalf("OriginalType(3) = %+v", o)
	}
	if o := s.OriginalProduct(4); o == nil || o.Name != "Grade A" {
		t.Fatalf("OriginalProduct(4) = %+v", o)
	}
	if p := s.Purchase(9); p == nil || p.BatchNumber != "11001" {
		t.Fatalf("Purchase(9) = %+v", p)
	}
	if o := s.OngoingOrder(2); o == nil || o.OrderNumber != "ORD-2" {
		t.Fatalf("OngoingOrder(2) = %+v", o)
	}
	if inv := s.SalesInvoice(8); inv == nil || inv.InvoiceNumber != "SINV-1001" {
		t.Fatalf("SalesInvoice(8) = %+v", inv)
	}
	if s.Division(6) == nil || s.SubDivision(7) == nil {
		t.Fatalf("division lookups failed")
	}

	// lookups return pointers into the snapshot
	s.Item(5).Name = "Bale 45kg"
	if s.Items[0].Name != "Bale 45kg" {
		t.Fatalf("Item lookup should not copy")
	}
}
