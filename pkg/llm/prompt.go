package llm

// extractionPrompt is the fixed contract sent with every document: five
// confidence-scored categories plus identity hints, normalized dates, JSON
// only.
const extractionPrompt = `You are a veterinary medical record parser. Extract all medical information from this document.

Return a JSON object with EXACTLY this structure (omit empty arrays):
{
  "medications": [
    {
      "drug_name": "string",
      "strength": "string or null",
      "directions": "string or null",
      "indication": "string or null",
      "start_date": "YYYY-MM-DD or null",
      "stop_date": "YYYY-MM-DD or null",
      "prescriber": "string or null",
      "pharmacy": "string or null",
      "confidence": 0.0
    }
  ],
  "vaccines": [
    {
      "name": "string",
      "date_given": "YYYY-MM-DD or null",
      "clinic": "string or null",
      "lot_number": "string or null",
      "next_due_date": "YYYY-MM-DD or null",
      "confidence": 0.0
    }
  ],
  "allergies": [
    {
      "substance_name": "string",
      "allergy_type": "Drug|Food|Environmental|Vaccine",
      "reaction_desc": "string or null",
      "severity": "Mild|Moderate|Severe|null",
      "confidence": 0.0
    }
  ],
  "problems": [
    {
      "condition_name": "string",
      "onset_date": "YYYY-MM-DD or null",
      "is_active": true,
      "notes": "string or null",
      "confidence": 0.0
    }
  ],
  "vitals": [
    {
      "recorded_date": "YYYY-MM-DD or null",
      "weight_kg": 0.0,
      "weight_lbs": 0.0,
      "temperature_f": 0.0,
      "heart_rate_bpm": 0,
      "respiratory_rate": 0,
      "notes": "string or null",
      "confidence": 0.0
    }
  ],
  "pet_info": {
    "name": "string or null",
    "species": "string or null",
    "breed": "string or null",
    "weight": "string or null",
    "confidence": 0.0
  }
}

Rules:
- confidence is your certainty this data is correct (1.0 = certain, 0.5 = uncertain)
- For dates: use YYYY-MM-DD. If only year is known, use YYYY-01-01
- Return ONLY the JSON object, no other text or markdown`
