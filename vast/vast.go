package vast

// DefaultVersion is the version attribute of the fallback document.
const DefaultVersion = "4.0"

// EmptyVAST is the canonical no-ad document returned whenever an auction can't produce a valid creative.
const EmptyVAST = `<VAST version="` + DefaultVersion + `"/>`
