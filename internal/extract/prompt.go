package extract

// Instruction is the fixed text sent alongside the textbook PDF.
const Instruction = `Analysiere dieses türkische B2-Lehrbuch und extrahiere Grammatikpunkte und Vokabellisten. Gib für jeden Grammatikpunkt eine deutsche Erklärung und Beispielssätze auf Türkisch. Gib für jedes Vokabelwort die deutsche Übersetzung und ein Beispielsatz auf Türkisch. Output muss reines JSON sein mit der Struktur:
{
  "chapters": [ { "title": "...", "grammar": [ { "point": "...", "german_explanation": "...", "examples": ["..."] } ], "vocabulary": [ { "word": "...", "translation_german": "...", "example": "..." } ] } ]
}`
