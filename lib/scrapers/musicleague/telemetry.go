package musicleague

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("scrapers/musicleague")
