package stages

const plannerPrompt = `You are a research planner. Create a JSON object with a "plan" key containing a list of 3-5 web search queries that would gather the background needed to answer the request below.

Respond with JSON only, for example {"plan": ["first query", "second query", "third query"]}.

Request: ${REQUEST}`

const augmentorPrompt = `You are a prompt engineer. Rewrite the user's prompt into a detailed, XML-structured prompt using the provided context. State the task, the audience, the constraints and the expected output format explicitly.

If the context is insufficient to write such a prompt, do not guess. Instead respond with only a JSON object with a "questions" key listing what you need to know, for example {"questions": ["Who is the audience?"]}.

Original Prompt: ${REQUEST}

Context:
${CONTEXT}`
