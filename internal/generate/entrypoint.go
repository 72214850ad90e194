package generate

import "slices"

const (
	dotenvPackage = "dotenv"

	frameworkImport = "const express = require('express');"
	appInstance     = "const app = express();"
	dotenvLoad      = "require('dotenv').config();"

	envPort     = "const port = process.env.PORT || 3000;"
	literalPort = "const port = 3000;"

	jsonBodyParser       = "app.use(express.json());"
	urlencodedBodyParser = "app.use(express.urlencoded({ extended: true }));"
)

type middleware struct {
	importLine string
	useLine    string
}

// middlewareTable lists the packages that get wired into index.js. Packages
// absent from the table only appear in package.json.
var middlewareTable = map[string]middleware{
	"cors": {
		importLine: "const cors = require('cors');",
		useLine:    "app.use(cors());",
	},
	"helmet": {
		importLine: "const helmet = require('helmet');",
		useLine:    "app.use(helmet());",
	},
	"morgan": {
		importLine: "const morgan = require('morgan');",
		useLine:    "app.use(morgan('combined'));",
	},
}

var routeLines = []string{
	"app.get('/', (req, res) => {",
	"  res.json({ message: 'Hello World!' });",
	"});",
	"",
	"app.listen(port, () => {",
	"  console.log(`Server running at http://localhost:${port}`);",
	"});",
}

// ComposeEntryPoint renders index.js for the selected packages.
func ComposeEntryPoint(packages []string) string {
	imports := newSection("imports", frameworkImport, appInstance)
	config := newSection("config")
	mw := newSection("middleware")
	routes := newSection("routes", routeLines...)

	if slices.Contains(packages, dotenvPackage) {
		imports.prepend(dotenvLoad)
		config.add(envPort)
	} else {
		config.add(literalPort)
	}

	for _, pkg := range packages {
		m, ok := middlewareTable[pkg]
		if !ok {
			continue
		}
		imports.add(m.importLine)
		mw.add(m.useLine)
	}

	mw.add(jsonBodyParser)
	mw.add(urlencodedBodyParser)

	return renderSections(imports, config, mw, routes)
}
