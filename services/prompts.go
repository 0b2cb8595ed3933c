package services

const outlineInstructions = `Analyze this content for a podcast discussion. Extract:
1. A brief summary (2-3 sentences)
2. 3-5 main topics for discussion, ordered by natural conversation flow
3. 2-3 engaging questions per topic that build on each other
4. Key quotes or excerpts (1-2 per topic) copied verbatim from the content that could spark discussion
5. Potential segues between topics

Respond with a JSON object:
{
  "summary": string,
  "topics": [{
    "id": string (uuid),
    "title": string,
    "questions": string[],
    "excerpts": string[],
    "segue_to_next": string,
    "status": "pending"
  }]
}`

const responseAnalysisInstructions = `Analyze this response for:
1. Key topics and keywords
2. Discussion depth (0-5)
3. User interests and engagement points
4. Relevant quotes or references

Respond with a JSON object:
{
  "keywords": string[],
  "depth": number,
  "keyPoints": string[],
  "relevantQuotes": string[],
  "userInterests": string[]
}`

const topicTransitionInstructions = `Suggest topic transitions based on:
1. Current topic and context
2. User engagement level
3. Conversation history

Respond with a JSON object:
{
  "transitionStrategy": string,
  "suggestedTopics": string[],
  "rationale": string
}`

const questionInstructions = `Generate a follow-up question based on:
1. Current topic and discussion depth
2. Recent context and keywords
3. User interests and engagement

Respond with a JSON object:
{
  "question": string,
  "type": "followup" | "clarification" | "transition",
  "rationale": string
}`

const engagementInstructions = `Analyze user engagement in a podcast conversation. Consider:
1. Response length and complexity
2. Topic relevance and depth
3. Question-answer patterns
4. Emotional engagement indicators

Respond with a JSON object:
{
  "score": number (0-1),
  "metrics": {
    "depth": number (1-5),
    "relevance": number (0-1),
    "complexity": number (0-1)
  },
  "patterns": {
    "elaboration": boolean,
    "personalExamples": boolean,
    "followUpQuestions": boolean
  },
  "recommendation": string
}`

const summaryInstructions = `Analyze this podcast transcript and provide a comprehensive summary. Include:
1. Main discussion points
2. Key takeaways
3. Topics covered with approximate duration in minutes and engagement level (0-1)
4. Overall engagement (0-1) and total duration in minutes

Respond with a JSON object:
{
  "mainPoints": string[],
  "keyTakeaways": string[],
  "topicsCovered": [{"title": string, "duration": number, "engagement": number}],
  "overallEngagement": number,
  "duration": number
}`

const systemPromptInstructions = `Analyze the following content and generate a comprehensive system prompt for an AI podcast host. Include:
1. Main themes and key concepts
2. Important context and background information
3. Potential discussion angles
4. Key terminology and definitions
5. Relationships between concepts`
