package insurance

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/Cloudinfo-Github/call-center-ai/core/tools/insurance"

var logger = otelslog.NewLogger(scopeName)
