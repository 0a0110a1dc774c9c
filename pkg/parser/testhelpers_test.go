package parser

import "time"

const testLayout = "2006-01-02 15:04:05,000"

func testExtractor() *TimestampExtractor {
	return NewTimestampExtractor(testLayout, time.UTC)
}

func testLifecycleFormat() LifecycleFormat {
	return LifecycleFormat{
		LevelMarker:    " INFO",
		Component:      "[c.o.s.s.d.LifeCycleServiceImpl]",
		Phrase:         "Переход ",
		Separator:      " для документа ",
		StartedStatus:  "запущен.",
		CheckMarker:    "Операция checkDocument",
		CheckCompleted: "завершена",
	}
}

func testDetailFormat() DetailFormat {
	return DetailFormat{
		LevelMarker:    " DEBUG",
		HeaderSuffix:   ": ",
		DetailMarker:   "Детали перехода ",
		DocumentMarker: "документа ",
		UnitSuffix:     "ms",
		TookMarker:     " took ",
	}
}

func testRequestFormat() RequestFormat {
	return RequestFormat{
		LevelMarker:     " DEBUG",
		Marker:          "Сформирован запрос на ",
		ResourceRequest: "getAllowedResources",
		ResourceMarker:  "SobiResourceActionPair",
	}
}

func ms(year int, month time.Month, day, hour, min, sec, milli int) time.Time {
	return time.Date(year, month, day, hour, min, sec, milli*int(time.Millisecond), time.UTC)
}
