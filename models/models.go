package models

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&Sequence{},
		&Product{},
		&Member{},
		&MemberBiometric{},
		&Staff{},
		&Invoice{},
		&InvoiceItem{},
		&Payment{},
		&Sale{},
		&Class{},
		&ClassBooking{},
		&Appointment{},
		&Attendance{},
		&Notification{},
		&ReportSnapshot{},
		&Enquiry{},
	}
}
