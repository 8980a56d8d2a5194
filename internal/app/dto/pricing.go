package dto

import (
	domainpricing "cabinrent/internal/domain/pricing"
	"cabinrent/internal/domain/shared/civil"
)

type PriceDay struct {
	Date        civil.Date `json:"date"`
	Weekday     int        `json:"weekday"`
	WeekdayName string     `json:"weekday_name"`
	Rate        int64      `json:"rate"`
	Kind        string     `json:"kind"`
	HolidayName string     `json:"holiday_name,omitempty"`
}

type PriceQuote struct {
	From  civil.Date `json:"from"`
	To    civil.Date `json:"to"`
	Days  []PriceDay `json:"days"`
	Total int64      `json:"total"`
}

type DayInfo struct {
	Date        civil.Date `json:"date"`
	Weekday     int        `json:"weekday"`
	WeekdayName string     `json:"weekday_name"`
	IsHoliday   bool       `json:"is_holiday"`
	HolidayName string     `json:"holiday_name,omitempty"`
	Kind        string     `json:"kind"`
	Rate        int64      `json:"rate"`
}

type Holiday struct {
	Date civil.Date `json:"date"`
	Name string     `json:"name"`
}

type HolidayCollection struct {
	Year  int       `json:"year"`
	Items []Holiday `json:"items"`
}

type Tariffs struct {
	Weekday int64 `json:"weekday"`
	Weekend int64 `json:"weekend"`
	Holiday int64 `json:"holiday"`
}

func MapPriceDay(d domainpricing.DayEntry) PriceDay {
	return PriceDay{
		Date:        d.Date,
		Weekday:     d.Weekday,
		WeekdayName: d.WeekdayName,
		Rate:        d.Rate,
		Kind:        string(d.Kind),
		HolidayName: d.HolidayName,
	}
}

func MapPriceQuote(q domainpricing.PriceQuote) PriceQuote {
	days := make([]PriceDay, 0, len(q.Days))
	for _, d := range q.Days {
		days = append(days, MapPriceDay(d))
	}
	return PriceQuote{From: q.Range.CheckIn, To: q.Range.CheckOut, Days: days, Total: q.Total}
}

func MapDayInfo(d domainpricing.DayEntry) DayInfo {
	return DayInfo{
		Date:        d.Date,
		Weekday:     d.Weekday,
		WeekdayName: d.WeekdayName,
		IsHoliday:   d.Kind == domainpricing.KindHoliday,
		HolidayName: d.HolidayName,
		Kind:        string(d.Kind),
		Rate:        d.Rate,
	}
}

func MapHolidays(year int, items []domainpricing.Holiday) HolidayCollection {
	out := HolidayCollection{Year: year, Items: make([]Holiday, 0, len(items))}
	for _, h := range items {
		out.Items = append(out.Items, Holiday{Date: h.Date, Name: h.Name})
	}
	return out
}

func MapTariffs(t domainpricing.Tariffs) Tariffs {
	return Tariffs(t)
}
