// internal/intent/schema.go
package intent

import "market-entry-workers/internal/common/validation"

// RecordSchema is the JSON schema every remote response must satisfy before
// it is decoded. Optional enums accept null.
const RecordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["is_holding", "must_be_bv", "intent", "urgency"],
  "additionalProperties": false,
  "properties": {
    "is_holding": {"type": "boolean"},
    "must_be_bv": {"type": "boolean"},
    "intent": {"type": "string", "enum": ["SETUP", "ADVISORY", "COMPLIANCE"]},
    "entity_type": {"enum": ["BV", "BRANCH", "HOLDING", null]},
    "urgency": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW"]},
    "industry_context": {"enum": ["TECH", "FINANCIAL", "GENERAL", null]}
  }
}`

var recordSchema = validation.MustCompileString(RecordSchema)
