package providers

import (
	"github.com/andreasgmg/fornet/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	pdf.Module,
)
